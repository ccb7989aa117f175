// README: Region store backed by PostgreSQL (read-only; admin CRUD lives elsewhere).
package region

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ListRecords returns every region row, active or not, as external records.
func (s *Store) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, tags, shape, geometry, is_active
		FROM price_regions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query price_regions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var geom []byte
		if err := rows.Scan(&r.ID, &r.Name, &r.Tags, &r.Shape, &geom, &r.IsActive); err != nil {
			return nil, fmt.Errorf("scan price_regions: %w", err)
		}
		if err := json.Unmarshal(geom, &r.Geometry); err != nil {
			return nil, fmt.Errorf("region %s geometry: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
