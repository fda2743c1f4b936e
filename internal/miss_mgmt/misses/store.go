package misses

import (
	"context"
	"database/sql"
	"strings"

	mysql "github.com/go-sql-driver/mysql"

	"MSM-backend/internal/miss_mgmt/lifecycle"
	"MSM-backend/internal/platform/db"
	"MSM-backend/internal/platform/periods"
)

// RecordStore は追記・全件走査・部分更新だけを提供する（行の削除は無い）。
// マスターログと週次タブは同スキーマの別テーブルで、TableRef で切り替える。
type RecordStore interface {
	Append(ctx context.Context, t TableRef, m *Miss) error
	ListAll(ctx context.Context, t TableRef) ([]Miss, error)
	FindByULID(ctx context.Context, t TableRef, ulid string) (*Miss, error)
	UpdateFields(ctx context.Context, t TableRef, ulid string, up FieldUpdates) error
	Provisioned(ctx context.Context, t TableRef) (bool, error)
}

type Store struct {
	db      *sql.DB
	periods *periods.Store
}

func NewStore(conn *sql.DB, reg *periods.Store) *Store {
	return &Store{db: conn, periods: reg}
}

const missCols = `
	miss_id, miss_ulid, DATE_FORMAT(report_date, '%Y-%m-%d'), submitted_by,
	time_called_in, zone, zone_color, time_sent_to_ops, address, service_type,
	route, whole_block, placement_exception, pe_address, city_notes,
	time_dispatched, driver_checkin, status, ops_notes, image_ref,
	times_missed, last_missed`

func scanMiss(row interface{ Scan(dest ...any) error }) (*Miss, error) {
	var m Miss
	var wholeBlock, placementEx int
	var status string
	err := row.Scan(
		&m.RowID, &m.MissULID, &m.Date, &m.SubmittedBy,
		&m.TimeCalledIn, &m.Zone, &m.ZoneColor, &m.TimeSentToOps, &m.Address, &m.ServiceType,
		&m.Route, &wholeBlock, &placementEx, &m.PEAddress, &m.CityNotes,
		&m.TimeDispatched, &m.DriverCheckin, &status, &m.OpsNotes, &m.ImageRef,
		&m.TimesMissed, &m.LastMissed,
	)
	if err != nil {
		return nil, err
	}
	m.WholeBlock = wholeBlock != 0
	m.PlacementException = placementEx != 0
	m.Status = lifecycle.Status(status)
	return &m, nil
}

func (s *Store) Append(ctx context.Context, t TableRef, m *Miss) error {
	var sb strings.Builder
	args := []any{}

	if t.IsMaster() {
		sb.WriteString(`INSERT INTO master_misses (`)
	} else {
		sb.WriteString(`INSERT INTO period_misses (week_ending, day_tab, `)
		args = append(args, t.WeekEnding, t.DayTab)
	}
	sb.WriteString(`
	miss_ulid, report_date, submitted_by, time_called_in, zone, zone_color,
	time_sent_to_ops, address, service_type, route, whole_block,
	placement_exception, pe_address, city_notes, time_dispatched,
	driver_checkin, status, ops_notes, image_ref, times_missed, last_missed
	) VALUES (`)
	if !t.IsMaster() {
		sb.WriteString(`?, ?, `)
	}
	sb.WriteString(`?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	args = append(args,
		m.MissULID, m.Date, m.SubmittedBy, m.TimeCalledIn, m.Zone, nullStrOrNil(m.ZoneColor),
		m.TimeSentToOps, m.Address, m.ServiceType, m.Route, m.WholeBlock,
		m.PlacementException, nullStrOrNil(m.PEAddress), nullStrOrNil(m.CityNotes), nullStrOrNil(m.TimeDispatched),
		nullStrOrNil(m.DriverCheckin), string(m.Status), nullStrOrNil(m.OpsNotes), nullStrOrNil(m.ImageRef),
		m.TimesMissed, m.LastMissed,
	)

	res, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return mapStoreErr(err)
	}
	if t.IsMaster() {
		id, _ := res.LastInsertId()
		m.RowID = id
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context, t TableRef) ([]Miss, error) {
	var q string
	var args []any
	if t.IsMaster() {
		q = `SELECT ` + missCols + ` FROM master_misses ORDER BY miss_id`
	} else {
		q = `SELECT ` + missCols + ` FROM period_misses WHERE week_ending = ? AND day_tab = ? ORDER BY miss_id`
		args = append(args, t.WeekEnding, t.DayTab)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	defer rows.Close()

	var out []Miss
	for rows.Next() {
		m, err := scanMiss(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreErr(err)
	}
	return out, nil
}

// ListWeek は週次ログの複数タブを読み取り専用Txでまとめて走査する。
// 帳票出力の途中で他の書き込みが混ざらないよう、1スナップショットで読む。
func (s *Store) ListWeek(ctx context.Context, weekEnding string, tabs []string) (map[string][]Miss, error) {
	out := make(map[string][]Miss, len(tabs))
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		const q = `SELECT ` + missCols + ` FROM period_misses WHERE week_ending = ? AND day_tab = ? ORDER BY miss_id`
		for _, tab := range tabs {
			rows, err := tx.QueryContext(ctx, q, weekEnding, tab)
			if err != nil {
				return err
			}
			list := []Miss{}
			for rows.Next() {
				m, err := scanMiss(rows)
				if err != nil {
					rows.Close()
					return err
				}
				list = append(list, *m)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return err
			}
			rows.Close()
			out[tab] = list
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return out, nil
}

func (s *Store) FindByULID(ctx context.Context, t TableRef, ulid string) (*Miss, error) {
	var q string
	args := []any{}
	if t.IsMaster() {
		q = `SELECT ` + missCols + ` FROM master_misses WHERE miss_ulid = ? LIMIT 1`
		args = append(args, ulid)
	} else {
		q = `SELECT ` + missCols + ` FROM period_misses WHERE week_ending = ? AND day_tab = ? AND miss_ulid = ? LIMIT 1`
		args = append(args, t.WeekEnding, t.DayTab, ulid)
	}

	m, err := scanMiss(s.db.QueryRowContext(ctx, q, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound("miss record not found: " + ulid)
	}
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return m, nil
}

// UpdateFields: 指定フィールドのみ更新。nil のフィールドは触らない。
func (s *Store) UpdateFields(ctx context.Context, t TableRef, ulid string, up FieldUpdates) error {
	var sets []string
	var args []any

	addStr := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	if up.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*up.Status))
	}
	addStr("time_dispatched", up.TimeDispatched)
	addStr("driver_checkin", up.DriverCheckin)
	addStr("ops_notes", up.OpsNotes)
	addStr("image_ref", up.ImageRef)
	if up.TimesMissed != nil {
		sets = append(sets, "times_missed = ?")
		args = append(args, *up.TimesMissed)
	}
	addStr("last_missed", up.LastMissed)

	if len(sets) == 0 {
		return nil
	}

	var sb strings.Builder
	if t.IsMaster() {
		sb.WriteString(`UPDATE master_misses SET `)
	} else {
		sb.WriteString(`UPDATE period_misses SET `)
	}
	sb.WriteString(strings.Join(sets, ", "))
	if t.IsMaster() {
		sb.WriteString(` WHERE miss_ulid = ?`)
		args = append(args, ulid)
	} else {
		sb.WriteString(` WHERE week_ending = ? AND day_tab = ? AND miss_ulid = ?`)
		args = append(args, t.WeekEnding, t.DayTab, ulid)
	}

	res, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return mapStoreErr(err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		// 対象行なし。片側にしか存在しない不整合は呼び出し側で顕在化させる。
		return ErrNotFound("miss record not found: " + ulid)
	}
	return nil
}

func (s *Store) Provisioned(ctx context.Context, t TableRef) (bool, error) {
	if t.IsMaster() {
		return true, nil
	}
	ok, err := s.periods.Provisioned(ctx, t.WeekEnding, t.DayTab)
	if err != nil {
		return false, mapStoreErr(err)
	}
	return ok, nil
}

// MySQLのエラーをAPIエラー種別へ。1226 はアカウント別クエリ上限（レート制限）、
// 1040/1053 は接続枯渇・シャットダウン中。
func mapStoreErr(err error) error {
	if me, ok := err.(*mysql.MySQLError); ok {
		switch me.Number {
		case 1226:
			return ErrRateLimited(me.Message)
		case 1040, 1053:
			return ErrStoreUnavailable(me.Message)
		}
	}
	return err
}

func nullStrOrNil(ns sql.NullString) any {
	if ns.Valid {
		return ns.String
	}
	return nil
}
