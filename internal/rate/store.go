package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotSet indicates no silver rate has been configured yet.
var ErrNotSet = errors.New("silver rate not set")

// Store persists the singleton silver rate row.
type Store struct {
	Pool *pgxpool.Pool
}

// Current reads the live rate per gram and when it was last changed.
func (s *Store) Current(ctx context.Context) (float64, time.Time, error) {
	if s == nil || s.Pool == nil {
		return 0, time.Time{}, errors.New("rate store not configured")
	}
	var (
		rate      float64
		updatedAt time.Time
	)
	err := s.Pool.QueryRow(ctx, "SELECT rate_per_gram, updated_at FROM silver_rate WHERE singleton").Scan(&rate, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, time.Time{}, ErrNotSet
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("read silver rate: %w", err)
	}
	return rate, updatedAt, nil
}

// Update upserts the singleton row with the new rate.
func (s *Store) Update(ctx context.Context, ratePerGram float64) error {
	if s == nil || s.Pool == nil {
		return errors.New("rate store not configured")
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO silver_rate (singleton, rate_per_gram, updated_at)
		VALUES (true, $1, now())
		ON CONFLICT (singleton) DO UPDATE SET rate_per_gram = EXCLUDED.rate_per_gram, updated_at = now()`,
		ratePerGram)
	if err != nil {
		return fmt.Errorf("update silver rate: %w", err)
	}
	return nil
}
