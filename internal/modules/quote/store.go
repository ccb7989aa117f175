// README: Quote persistence; consumption is a single conditional write in every backend.
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"transferquote/internal/types"
)

type Store interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id types.ID) (*Quote, error)
	// MarkUsed flips isUsed false -> true only while expiresAt > now.
	// It returns ErrNotFound, ErrExpired or ErrAlreadyUsed when the swap does not happen.
	MarkUsed(ctx context.Context, id types.ID, class types.VehicleClass, now time.Time) error
}

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, q *Quote) error {
	payload, err := encodePayload(q)
	if err != nil {
		return fmt.Errorf("encode quote %s: %w", q.ID, err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO quotes (
			id, pickup_at, pax, bags, payload, created_at, expires_at, is_used
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, FALSE
		)`,
		string(q.ID),
		q.PickupAt,
		q.Pax,
		q.Bags,
		payload,
		q.CreatedAt,
		q.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert quote %s: %w", q.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Quote, error) {
	row := s.db.QueryRow(ctx, `
		SELECT payload, expires_at, is_used, used_at, selected_class
		FROM quotes
		WHERE id = $1`, string(id),
	)

	var payload []byte
	var expiresAt time.Time
	var isUsed bool
	var usedAt *time.Time
	var selected *string
	err := row.Scan(&payload, &expiresAt, &isUsed, &usedAt, &selected)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select quote %s: %w", id, err)
	}

	q, err := decodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("decode quote %s: %w", id, err)
	}
	q.ExpiresAt = expiresAt
	q.IsUsed = isUsed
	q.UsedAt = usedAt
	if selected != nil {
		q.SelectedClass = types.VehicleClass(*selected)
	}
	return q, nil
}

func (s *PostgresStore) MarkUsed(ctx context.Context, id types.ID, class types.VehicleClass, now time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE quotes
		SET is_used = TRUE,
		    used_at = $2,
		    selected_class = $3
		WHERE id = $1 AND is_used = FALSE AND expires_at > $2`,
		string(id),
		now,
		string(class),
	)
	if err != nil {
		return fmt.Errorf("consume quote %s: %w", id, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// The swap lost; read back only to name the reason.
	var expiresAt time.Time
	var isUsed bool
	err = s.db.QueryRow(ctx, `SELECT expires_at, is_used FROM quotes WHERE id = $1`, string(id)).Scan(&expiresAt, &isUsed)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("classify quote %s: %w", id, err)
	}
	if !now.Before(expiresAt) {
		return ErrExpired
	}
	return ErrAlreadyUsed
}
