package reference

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const entryCols = `
	address_id, address, msw_zone, msw_route, ss_zone, ss_route,
	ss_zone_color, yw_zone, yw_route`

// ListAll: 住所リスト全件。件数は数百程度の想定なのでメモリに展開して使う。
func (s *Store) ListAll(ctx context.Context) ([]AddressEntry, error) {
	const q = `SELECT ` + entryCols + ` FROM address_list ORDER BY address`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AddressEntry
	for rows.Next() {
		var e AddressEntry
		if err := rows.Scan(
			&e.AddressID, &e.Address, &e.MSWZone, &e.MSWRoute, &e.SSZone, &e.SSRoute,
			&e.SSZoneColor, &e.YWZone, &e.YWRoute,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByAddress: 住所で1件取得。無ければ (nil, nil)。
func (s *Store) GetByAddress(ctx context.Context, address string) (*AddressEntry, error) {
	const q = `SELECT ` + entryCols + ` FROM address_list WHERE address = ? LIMIT 1`

	var e AddressEntry
	err := s.db.QueryRowContext(ctx, q, address).Scan(
		&e.AddressID, &e.Address, &e.MSWZone, &e.MSWRoute, &e.SSZone, &e.SSRoute,
		&e.SSZoneColor, &e.YWZone, &e.YWRoute,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
