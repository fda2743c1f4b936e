package gates

import (
	"context"
	"database/sql"

	"MSM-backend/internal/platform/db"
)

type Store struct{ conn *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{conn: conn} }

// Get: (日付, サービス種別) のゲート。未作成なら (nil, nil)。
func (s *Store) Get(ctx context.Context, gateDate, serviceType string) (*Gate, error) {
	const q = `
	SELECT gate_id, DATE_FORMAT(gate_date, '%Y-%m-%d'), service_type, status, completed_at, completed_by
	FROM completion_gates
	WHERE gate_date = ? AND service_type = ?
	LIMIT 1`

	var r gateRow
	err := s.conn.QueryRowContext(ctx, q, gateDate, serviceType).Scan(
		&r.GateID, &r.GateDate, &r.ServiceType, &r.Status, &r.CompletedAt, &r.CompletedBy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	g := r.toModel()
	return &g, nil
}

// ListForDate: 指定日の全エントリ
func (s *Store) ListForDate(ctx context.Context, gateDate string) ([]Gate, error) {
	const q = `
	SELECT gate_id, DATE_FORMAT(gate_date, '%Y-%m-%d'), service_type, status, completed_at, completed_by
	FROM completion_gates
	WHERE gate_date = ?
	ORDER BY service_type`

	rows, err := s.conn.QueryContext(ctx, q, gateDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Gate
	for rows.Next() {
		var r gateRow
		if err := rows.Scan(&r.GateID, &r.GateDate, &r.ServiceType, &r.Status, &r.CompletedAt, &r.CompletedBy); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

// MarkComplete: (gate_date, service_type) のUNIQUEキーでINSERTまたはUPDATE。
// 完了時刻と操作者を記録する。
func (s *Store) MarkComplete(ctx context.Context, gateDate, serviceType, actor string) (Gate, error) {
	const q = `
	INSERT INTO completion_gates (gate_date, service_type, status, completed_at, completed_by)
	VALUES (?, ?, 'Complete', UTC_TIMESTAMP(6), ?)
	ON DUPLICATE KEY UPDATE
	status       = VALUES(status),
	completed_at = VALUES(completed_at),
	completed_by = VALUES(completed_by)`

	if _, err := s.conn.ExecContext(ctx, q, gateDate, serviceType, actor); err != nil {
		return Gate{}, err
	}

	g, err := s.Get(ctx, gateDate, serviceType)
	if err != nil {
		return Gate{}, err
	}
	if g == nil {
		return Gate{}, errInternal("gate upserted but not found")
	}
	return *g, nil
}

// ClearDay: 指定日の全サービス種別を Not Complete に戻す。
// 行が無いサービス種別分も作る（翌朝のリセット運用）。
func (s *Store) ClearDay(ctx context.Context, gateDate string, serviceTypes []string) error {
	return db.RunInTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		const q = `
		INSERT INTO completion_gates (gate_date, service_type, status, completed_at, completed_by)
		VALUES (?, ?, 'Not Complete', NULL, NULL)
		ON DUPLICATE KEY UPDATE
		status       = 'Not Complete',
		completed_at = NULL,
		completed_by = NULL`
		for _, st := range serviceTypes {
			if _, err := tx.ExecContext(ctx, q, gateDate, st); err != nil {
				return err
			}
		}
		return nil
	})
}
