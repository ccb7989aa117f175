// README: Base price store backed by PostgreSQL.
package baseprice

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, region_id, vehicle_class, base_fare, price_per_km, price_per_minute,
		       minimum_fare, currency, valid_from, valid_until, is_active
		FROM base_prices
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query base_prices: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.RegionID, &r.VehicleClass, &r.BaseFare, &r.PricePerKm, &r.PricePerMinute,
			&r.MinimumFare, &r.Currency, &r.ValidFrom, &r.ValidUntil, &r.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan base_prices: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
