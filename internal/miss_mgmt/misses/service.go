package misses

import (
	"context"
	"crypto/rand"
	"database/sql"
	"io"
	"log"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"MSM-backend/internal/miss_mgmt/lifecycle"
	"MSM-backend/internal/platform/periods"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// GateChecker: 当日のサービス便が完了済みかどうか（gates パッケージが実装）
type GateChecker interface {
	GateFor(ctx context.Context, date, serviceType string) (lifecycle.GateStatus, bool, error)
}

// ReferenceLookup: 住所リストからのルート・ゾーンカラー解決（reference パッケージが実装）
type ReferenceLookup interface {
	RouteFor(ctx context.Context, address, serviceType string) (route, zoneColor string, err error)
}

// Uploader: 添付画像の保存先。失敗しても完了処理は止めない。
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// ImageUpload は multipart から受けた添付画像
type ImageUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// ===== Service本体 =====

type Service struct {
	store    RecordStore
	gates    GateChecker
	ref      ReferenceLookup
	uploader Uploader
	clock    Clock
	id       IDGen
	loc      *time.Location
}

func NewService(store RecordStore, gates GateChecker, ref ReferenceLookup, uploader Uploader, loc *time.Location) *Service {
	return &Service{
		store:    store,
		gates:    gates,
		ref:      ref,
		uploader: uploader,
		clock:    realClock{},
		id:       ulidGen{},
		loc:      loc,
	}
}

// periodRefFor: 記録の報告日から週次ログの書き込み先を求める
func periodRefFor(date string) (TableRef, bool) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return TableRef{}, false
	}
	tab, ok := periods.DayTabFor(d)
	if !ok {
		return TableRef{}, false
	}
	we := periods.WeekEndingFor(d).Format(DateLayout)
	return PeriodTable(we, tab), true
}

// 新規報告の登録
func (s *Service) Submit(ctx context.Context, req SubmitMissRequest, submittedBy string) (*MissResponse, error) {
	if !ValidServiceType(req.ServiceType) {
		return nil, ErrInvalid("service_type must be one of MSW, SS, YW")
	}
	if req.Address == "" || req.Zone == "" {
		return nil, ErrInvalid("zone and address are required")
	}
	calledIn, err := lifecycle.NormalizeClockTime(req.TimeCalledIn)
	if err != nil {
		return nil, ErrInvalid("time_called_in must be a 12-hour time like 9:30 AM")
	}
	if req.PlacementException && (req.PEAddress == nil || strings.TrimSpace(*req.PEAddress) == "") {
		return nil, ErrInvalid("pe_address is required when placement_exception is set")
	}

	now := s.clock.Now().In(s.loc)
	date := now.Format(DateLayout)

	// 週次ログの提出先タブ。未登録なら書き込み前にブロックする。
	pref, ok := periodRefFor(date)
	if !ok {
		return nil, ErrPeriodNotProvisioned(periods.WeekEndingFor(now).Format(DateLayout), now.Weekday().String())
	}
	provisioned, err := s.store.Provisioned(ctx, pref)
	if err != nil {
		return nil, err
	}
	if !provisioned {
		return nil, ErrPeriodNotProvisioned(pref.WeekEnding, pref.DayTab)
	}

	// マスターログを走査して重複ガードと履歴集計を行う
	master, err := s.store.ListAll(ctx, MasterTable())
	if err != nil {
		return nil, err
	}
	history := make([]lifecycle.HistoryEntry, 0, len(master))
	for i := range master {
		history = append(history, master[i].historyEntry())
	}
	if lifecycle.HasActiveDuplicate(history, req.Address) {
		return nil, ErrDuplicateActive(req.Address)
	}

	// ルート・ゾーンカラーは住所リストから解決する（ユーザー入力は信用しない）
	route, zoneColor, err := s.ref.RouteFor(ctx, req.Address, req.ServiceType)
	if err != nil {
		return nil, err
	}

	gate, gateExists, err := s.gates.GateFor(ctx, date, req.ServiceType)
	if err != nil {
		return nil, err
	}
	status := lifecycle.SubmitStatus(gate, gateExists)

	timesMissed, lastMissed := lifecycle.SubmitTally(history, req.Address)

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	m := &Miss{
		MissULID:           idStr,
		Date:               date,
		SubmittedBy:        submittedBy,
		TimeCalledIn:       calledIn,
		Zone:               req.Zone,
		TimeSentToOps:      now,
		Address:            req.Address,
		ServiceType:        req.ServiceType,
		Route:              route,
		WholeBlock:         req.WholeBlock,
		PlacementException: req.PlacementException,
		Status:             status,
		TimesMissed:        timesMissed,
		LastMissed:         lastMissed,
	}
	// ゾーンカラーを持つのは SS のみ
	if req.ServiceType == ServiceSS && zoneColor != "" {
		m.ZoneColor = sql.NullString{String: zoneColor, Valid: true}
	}
	if req.PlacementException && req.PEAddress != nil {
		m.PEAddress = sql.NullString{String: strings.TrimSpace(*req.PEAddress), Valid: true}
	}
	if req.CityNotes != nil && *req.CityNotes != "" {
		m.CityNotes = sql.NullString{String: *req.CityNotes, Valid: true}
	}

	// マスターが正、週次ログはミラー。順序は常にマスター→週次。
	if err := s.store.Append(ctx, MasterTable(), m); err != nil {
		return nil, err
	}
	if err := s.store.Append(ctx, pref, m); err != nil {
		// ロールバックはしない（設計上の割り切り）。不整合として顕在化させる。
		log.Printf("[WARN] period append failed for %s: %v", m.MissULID, err)
		return nil, ErrReconcileDiverged(m.MissULID, err.Error())
	}

	resp := buildMissResponse(m, pref.WeekEnding, pref.DayTab)
	return &resp, nil
}

// ディスパッチ（複数件）。レート制限に当たったらそこで打ち切り、
// 成功済み件数だけを報告する。
func (s *Service) Dispatch(ctx context.Context, req DispatchRequest, actor string) (*DispatchResponse, error) {
	if len(req.MissULIDs) == 0 {
		return nil, ErrInvalid("miss_ulids must not be empty")
	}

	resp := &DispatchResponse{Dispatched: []string{}}
	nowStr := s.clock.Now().In(s.loc).Format(DateTimeLayout)

	fail := func(id string, err error) {
		resp.Failures = append(resp.Failures, DispatchFailure{
			MissULID: id,
			Code:     codeOf(err),
			Message:  err.Error(),
		})
	}

	for _, id := range req.MissULIDs {
		m, err := s.store.FindByULID(ctx, MasterTable(), id)
		if err != nil {
			if codeOf(err) == CodeRateLimited {
				resp.Halted = true
				resp.HaltReason = err.Error()
				break
			}
			fail(id, err)
			continue
		}
		if m.TimeDispatched.Valid && m.TimeDispatched.String != "" {
			fail(id, ErrConflict("already dispatched at "+m.TimeDispatched.String))
			continue
		}

		// Premature はディスパッチしてもステータスを維持する
		newStatus := lifecycle.DispatchStatus(m.Status)
		up := FieldUpdates{Status: &newStatus, TimeDispatched: &nowStr}

		if err := s.store.UpdateFields(ctx, MasterTable(), id, up); err != nil {
			if codeOf(err) == CodeRateLimited {
				resp.Halted = true
				resp.HaltReason = err.Error()
				break
			}
			fail(id, err)
			continue
		}

		// 週次ログ側のミラー更新
		if err := s.mirrorUpdate(ctx, m, id, up); err != nil {
			if codeOf(err) == CodeRateLimited {
				// マスターは更新済み。成功数に数えた上で打ち切る。
				resp.Dispatched = append(resp.Dispatched, id)
				resp.Halted = true
				resp.HaltReason = err.Error()
				break
			}
			fail(id, err)
			continue
		}

		resp.Dispatched = append(resp.Dispatched, id)
	}

	log.Printf("[INFO] dispatch by %s: %d ok, %d failed, halted=%v", actor, len(resp.Dispatched), len(resp.Failures), resp.Halted)
	return resp, nil
}

// mirrorUpdate: マスター更新後の週次ログへの反映。
// タブ未登録は「ログして続行」、登録済みタブに行が無いのは不整合として返す。
func (s *Service) mirrorUpdate(ctx context.Context, m *Miss, id string, up FieldUpdates) error {
	pref, ok := periodRefFor(m.Date)
	if !ok {
		log.Printf("[WARN] no weekly tab for %s (date %s); master updated only", id, m.Date)
		return nil
	}
	provisioned, err := s.store.Provisioned(ctx, pref)
	if err != nil {
		return err
	}
	if !provisioned {
		log.Printf("[WARN] weekly tab %s/%s not provisioned for %s; master updated only", pref.WeekEnding, pref.DayTab, id)
		return nil
	}
	if err := s.store.UpdateFields(ctx, pref, id, up); err != nil {
		if codeOf(err) == CodeRateLimited {
			return err
		}
		return ErrReconcileDiverged(id, err.Error())
	}
	return nil
}

// 完了登録
func (s *Service) Complete(ctx context.Context, ulidStr string, req CompleteMissRequest, img *ImageUpload, actor string) (*MissResponse, error) {
	outcome, ok := lifecycle.ParseStatus(req.Outcome)
	if !ok || !lifecycle.IsCompletionOutcome(outcome) {
		return nil, ErrInvalid("outcome must be a completion status such as Picked Up or Not Out")
	}
	checkin, err := lifecycle.NormalizeClockTime(req.DriverCheckin)
	if err != nil {
		return nil, ErrInvalid("driver_checkin must be a 12-hour time like 1:30 PM")
	}

	m, err := s.store.FindByULID(ctx, MasterTable(), ulidStr)
	if err != nil {
		return nil, err
	}
	dispatched := m.TimeDispatched.Valid && m.TimeDispatched.String != ""
	if !lifecycle.CanComplete(m.Status, dispatched) {
		return nil, ErrConflict("record is not awaiting completion (status " + string(m.Status) + ")")
	}

	// 画像アップロードは完了処理を止めない。失敗は番兵値で記録する。
	imageRef := ImageNone
	if img != nil {
		url, upErr := s.uploader.Upload(ctx, s.imageKey(m, img.Filename), img.ContentType, img.Reader)
		if upErr != nil {
			log.Printf("[WARN] image upload failed for %s: %v", ulidStr, upErr)
			imageRef = ImageUploadFailed
		} else {
			imageRef = url
		}
	}

	// 完了時点での再集計。この記録の (日付, 受付時刻) より厳密に前の
	// 正規漏れだけを数える。
	master, err := s.store.ListAll(ctx, MasterTable())
	if err != nil {
		return nil, err
	}
	history := make([]lifecycle.HistoryEntry, 0, len(master))
	for i := range master {
		if master[i].MissULID == ulidStr {
			continue
		}
		history = append(history, master[i].historyEntry())
	}
	cutoff := lifecycle.PointOf(m.Date, m.TimeCalledIn)
	timesMissed, lastMissed := lifecycle.CompletionTally(history, m.Address, cutoff, outcome, m.Date)

	up := FieldUpdates{
		Status:        &outcome,
		DriverCheckin: &checkin,
		ImageRef:      &imageRef,
		TimesMissed:   &timesMissed,
		LastMissed:    &lastMissed,
	}
	if req.OpsNotes != nil {
		up.OpsNotes = req.OpsNotes
	}

	if err := s.store.UpdateFields(ctx, MasterTable(), ulidStr, up); err != nil {
		return nil, err
	}
	if err := s.mirrorUpdate(ctx, m, ulidStr, up); err != nil {
		return nil, err
	}

	log.Printf("[INFO] miss %s completed as %s by %s", ulidStr, outcome, actor)

	updated, err := s.store.FindByULID(ctx, MasterTable(), ulidStr)
	if err != nil {
		return nil, err
	}
	pref, _ := periodRefFor(updated.Date)
	resp := buildMissResponse(updated, pref.WeekEnding, pref.DayTab)
	return &resp, nil
}

// imageKey: 添付画像の保存キー。行番号・サービス種別・日付で引けるようにする。
func (s *Service) imageKey(m *Miss, filename string) string {
	ext := path.Ext(filename)
	date := s.clock.Now().In(s.loc).Format("1.2.2006")
	suffix := uuid.NewString()[:8]
	return "missed_stops/" + strconv.FormatInt(m.RowID, 10) + "-" + m.ServiceType + "-" + date + "-" + suffix + ext
}

// 一覧取得
func (s *Service) List(ctx context.Context, q ListQuery) ([]MissResponse, error) {
	t := MasterTable()
	if q.Scope == "day" {
		if q.WeekEnding == "" || q.DayTab == "" {
			return nil, ErrInvalid("week_ending and day_tab are required for day scope")
		}
		t = PeriodTable(q.WeekEnding, q.DayTab)
	}

	all, err := s.store.ListAll(ctx, t)
	if err != nil {
		return nil, err
	}

	out := make([]MissResponse, 0, len(all))
	for i := range all {
		m := &all[i]
		if q.Address != "" && m.Address != q.Address {
			continue
		}
		if q.ServiceType != "" && m.ServiceType != q.ServiceType {
			continue
		}
		if q.Status != "" && string(m.Status) != q.Status {
			continue
		}
		dispatched := m.TimeDispatched.Valid && m.TimeDispatched.String != ""
		switch q.Class {
		case "open":
			// 未ディスパッチの Pending / Premature
			if dispatched || !lifecycle.IsActiveForDuplicate(m.Status) {
				continue
			}
		case "to_complete":
			if !lifecycle.CanComplete(m.Status, dispatched) {
				continue
			}
		}
		pref, _ := periodRefFor(m.Date)
		out = append(out, buildMissResponse(m, pref.WeekEnding, pref.DayTab))
	}
	return out, nil
}

// 単一取得（マスターログ基準）
func (s *Service) GetByULID(ctx context.Context, ulidStr string) (*MissResponse, error) {
	if ulidStr == "" {
		return nil, ErrInvalid("miss_ulid is required")
	}
	m, err := s.store.FindByULID(ctx, MasterTable(), ulidStr)
	if err != nil {
		return nil, err
	}
	pref, _ := periodRefFor(m.Date)
	resp := buildMissResponse(m, pref.WeekEnding, pref.DayTab)
	return &resp, nil
}
