package periods

import (
	"context"
	"database/sql"
	"time"

	"MSM-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// EnsureWeek: 週次ログ（週締め日 + 6タブ）を冪等に登録する。
// 既に登録済みの週なら何もしない。
func (s *Store) EnsureWeek(ctx context.Context, weekEnding time.Time) error {
	we := weekEnding.Format(DateLayout)
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const q = `
		INSERT IGNORE INTO period_tabs (week_ending, day_tab, created_at)
		VALUES (?, ?, NOW(6))`
		for _, tab := range DayTabs {
			if _, err := tx.ExecContext(ctx, q, we, tab); err != nil {
				return err
			}
		}
		return nil
	})
}

// Provisioned: 指定タブが登録済みか
func (s *Store) Provisioned(ctx context.Context, weekEnding, dayTab string) (bool, error) {
	const q = `SELECT 1 FROM period_tabs WHERE week_ending = ? AND day_tab = ? LIMIT 1`
	var one int
	err := s.db.QueryRowContext(ctx, q, weekEnding, dayTab).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListTabs: 登録済みタブを曜日順で返す
func (s *Store) ListTabs(ctx context.Context, weekEnding string) ([]string, error) {
	const q = `
	SELECT day_tab FROM period_tabs
	WHERE week_ending = ?
	ORDER BY FIELD(day_tab, 'Monday','Tuesday','Wednesday','Thursday','Friday','Saturday')`
	rows, err := s.db.QueryContext(ctx, q, weekEnding)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tabs []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tabs = append(tabs, t)
	}
	return tabs, rows.Err()
}
