package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no coupon matches the lookup.
var ErrNotFound = errors.New("coupon not found")

// ErrDuplicateCode is returned when creating a coupon whose code already exists.
var ErrDuplicateCode = errors.New("coupon code already exists")

// Coupon is the persisted discount record. Codes are stored uppercase.
type Coupon struct {
	ID                 uuid.UUID `json:"id"`
	Code               string    `json:"code"`
	DiscountPercentage int32     `json:"discountPercentage"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Store provides pgx-backed access to the coupons table.
type Store struct {
	Pool *pgxpool.Pool
}

const couponColumns = `id, code, discount_percentage, is_active, created_at`

// GetByCode looks a coupon up by its normalized (uppercase, trimmed) code.
func (s *Store) GetByCode(ctx context.Context, code string) (Coupon, error) {
	if s == nil || s.Pool == nil {
		return Coupon{}, errors.New("coupon store not configured")
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1`,
		NormalizeCode(code))
	return scanCoupon(row)
}

// List returns all coupons, newest first.
func (s *Store) List(ctx context.Context) ([]Coupon, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("coupon store not configured")
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()
	out := make([]Coupon, 0, 16)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a new coupon and returns the stored record.
func (s *Store) Create(ctx context.Context, code string, discountPct int32, active bool) (Coupon, error) {
	if s == nil || s.Pool == nil {
		return Coupon{}, errors.New("coupon store not configured")
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO coupons (code, discount_percentage, is_active)
		VALUES ($1, $2, $3)
		RETURNING `+couponColumns,
		NormalizeCode(code), discountPct, active)
	c, err := scanCoupon(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Coupon{}, ErrDuplicateCode
		}
		return Coupon{}, fmt.Errorf("create coupon: %w", err)
	}
	return c, nil
}

// SetActive toggles a coupon on or off.
func (s *Store) SetActive(ctx context.Context, id uuid.UUID, active bool) (Coupon, error) {
	if s == nil || s.Pool == nil {
		return Coupon{}, errors.New("coupon store not configured")
	}
	row := s.Pool.QueryRow(ctx, `
		UPDATE coupons SET is_active = $2 WHERE id = $1
		RETURNING `+couponColumns,
		id.String(), active)
	return scanCoupon(row)
}

// Delete removes a coupon permanently.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Pool == nil {
		return errors.New("coupon store not configured")
	}
	tag, err := s.Pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NormalizeCode uppercases and trims a user-supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func scanCoupon(row pgx.Row) (Coupon, error) {
	var (
		c      Coupon
		idText string
	)
	if err := row.Scan(&idText, &c.Code, &c.DiscountPercentage, &c.IsActive, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Coupon{}, ErrNotFound
		}
		return Coupon{}, fmt.Errorf("scan coupon: %w", err)
	}
	parsed, err := uuid.Parse(idText)
	if err != nil {
		return Coupon{}, fmt.Errorf("parse coupon id: %w", err)
	}
	c.ID = parsed
	return c, nil
}
