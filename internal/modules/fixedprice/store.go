// README: Fixed price store backed by PostgreSQL.
package fixedprice

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
		SELECT id, origin_region_id, destination_region_id, vehicle_class, fixed_price, currency,
		       estimated_distance_km, estimated_duration_minutes, included_waiting_minutes,
		       additional_waiting_price, priority, is_active, created_at
		FROM fixed_prices
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query fixed_prices: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.OriginRegionID, &r.DestinationRegionID, &r.VehicleClass, &r.FixedPrice, &r.Currency,
			&r.EstimatedDistance, &r.EstimatedDuration, &r.IncludedWaitingTime,
			&r.AdditionalWaitingPrice, &r.Priority, &r.IsActive, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan fixed_prices: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
