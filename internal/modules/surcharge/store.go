// README: Surcharge store backed by PostgreSQL.
package surcharge

import (
	"context"
	"fmt"
	"time"

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
		SELECT id, region_id, name, type, application, value, COALESCE(currency, ''),
		       cutoff_minutes, time_left_minutes, start_time, end_time,
		       range_start, range_end, days_of_week, priority, is_active, COALESCE(description, '')
		FROM surcharges
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query surcharges: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var startTime, endTime *string
		var rangeStart, rangeEnd *time.Time
		var days []int32
		if err := rows.Scan(
			&r.ID, &r.RegionID, &r.Name, &r.Type, &r.Application, &r.Value, &r.Currency,
			&r.CutoffMinutes, &r.TimeLeftMinutes, &startTime, &endTime,
			&rangeStart, &rangeEnd, &days, &r.Priority, &r.IsActive, &r.Description,
		); err != nil {
			return nil, fmt.Errorf("scan surcharges: %w", err)
		}
		if startTime != nil && endTime != nil {
			r.TimeRange = &TimeRange{StartTime: *startTime, EndTime: *endTime}
		}
		if rangeStart != nil && rangeEnd != nil {
			r.DateTimeRange = &DateTimeRange{Start: *rangeStart, End: *rangeEnd}
		}
		for _, d := range days {
			r.DaysOfWeek = append(r.DaysOfWeek, int(d))
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
