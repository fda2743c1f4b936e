package misses

import (
	"database/sql"
	"strconv"
	"time"

	"MSM-backend/internal/miss_mgmt/lifecycle"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// サービス種別
const (
	ServiceMSW = "MSW" // 可燃・一般ごみ
	ServiceSS  = "SS"  // 資源（単一分別）。ゾーンカラーを持つのはこの種別のみ
	ServiceYW  = "YW"  // 庭ごみ
)

var ServiceTypes = []string{ServiceMSW, ServiceSS, ServiceYW}

func ValidServiceType(s string) bool {
	for _, t := range ServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}

// 画像列の番兵値（旧アプリのシート表記と互換）
const (
	ImageNone         = "N/A"
	ImageUploadFailed = "UPLOAD FAILED"
)

// Miss は回収漏れ報告1件（master_misses / period_misses 1行）を表す
type Miss struct {
	RowID              int64
	MissULID           string
	Date               string // YYYY-MM-DD
	SubmittedBy        string
	TimeCalledIn       string // "HH:MM AM" に正規化済み
	Zone               string
	ZoneColor          sql.NullString // SS のみ
	TimeSentToOps      time.Time
	Address            string
	ServiceType        string
	Route              string
	WholeBlock         bool
	PlacementException bool
	PEAddress          sql.NullString
	CityNotes          sql.NullString
	TimeDispatched     sql.NullString // "YYYY-MM-DD HH:MM:SS"
	DriverCheckin      sql.NullString // "HH:MM AM"
	Status             lifecycle.Status
	OpsNotes           sql.NullString
	ImageRef           sql.NullString // URL か番兵値
	TimesMissed        int
	LastMissed         string
}

// historyEntry に落とす（集計はすべて lifecycle 側の純粋関数で行う）
func (m *Miss) historyEntry() lifecycle.HistoryEntry {
	return lifecycle.HistoryEntry{
		Address:        m.Address,
		Date:           m.Date,
		TimeCalledIn:   m.TimeCalledIn,
		Status:         m.Status,
		TimeDispatched: m.TimeDispatched.String,
	}
}

// TableRef は書き込み先テーブルの指定。
// WeekEnding が空ならマスターログ、入っていれば週次ログの1タブ。
type TableRef struct {
	WeekEnding string // "YYYY-MM-DD"
	DayTab     string // "Monday" .. "Saturday"
}

func MasterTable() TableRef { return TableRef{} }

func PeriodTable(weekEnding, dayTab string) TableRef {
	return TableRef{WeekEnding: weekEnding, DayTab: dayTab}
}

func (t TableRef) IsMaster() bool { return t.WeekEnding == "" }

// FieldUpdates は部分更新。nil のフィールドは現状維持。
type FieldUpdates struct {
	Status         *lifecycle.Status
	TimeDispatched *string
	DriverCheckin  *string
	OpsNotes       *string
	ImageRef       *string
	TimesMissed    *int
	LastMissed     *string
}

// ReportColumns は帳票・エクスポートの列順（旧シートの列構成と互換）
var ReportColumns = []string{
	"Date", "Submitted By", "Time Called In", "Zone", "Zone Color",
	"Time Sent to Ops", "Address", "Service Type", "Route", "Whole Block",
	"Placement Exception", "PE Address", "City Notes", "Time Dispatched",
	"Driver Check-in Time", "Collection Status", "Ops Notes", "Image",
	"Times Missed", "Last Missed",
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func orNA(ns sql.NullString) string {
	if ns.Valid && ns.String != "" {
		return ns.String
	}
	return "N/A"
}

// ReportRow は ReportColumns と同順の値列
func (m *Miss) ReportRow() []string {
	return []string{
		m.Date,
		m.SubmittedBy,
		m.TimeCalledIn,
		m.Zone,
		m.ZoneColor.String,
		m.TimeSentToOps.Format(DateTimeLayout),
		m.Address,
		m.ServiceType,
		m.Route,
		yesNo(m.WholeBlock),
		yesNo(m.PlacementException),
		orNA(m.PEAddress),
		m.CityNotes.String,
		m.TimeDispatched.String,
		m.DriverCheckin.String,
		string(m.Status),
		m.OpsNotes.String,
		orNA(m.ImageRef),
		strconv.Itoa(m.TimesMissed),
		m.LastMissed,
	}
}
