package coupon

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kashvi-silver/backend-kashvi/internal/pricing"
)

// ErrInvalidPercent is returned when a discount percentage falls outside 1..100.
var ErrInvalidPercent = errors.New("discount percentage must be between 1 and 100")

// CouponStore captures the persistence operations required by the service.
type CouponStore interface {
	GetByCode(ctx context.Context, code string) (Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	Create(ctx context.Context, code string, discountPct int32, active bool) (Coupon, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service evaluates coupon codes and exposes admin management operations.
type Service struct {
	Store CouponStore
	Log   zerolog.Logger
}

// Redeemable resolves a code to its discount percentage. Unknown or inactive
// codes yield a zero percentage without error so callers degrade gracefully
// instead of failing the purchase.
func (s *Service) Redeemable(ctx context.Context, code string) (int32, bool) {
	if s == nil || s.Store == nil {
		return 0, false
	}
	if NormalizeCode(code) == "" {
		return 0, false
	}
	c, err := s.Store.GetByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.Log.Warn().Err(err).Str("code", NormalizeCode(code)).Msg("coupon lookup failed")
		}
		return 0, false
	}
	if !c.IsActive || c.DiscountPercentage < 1 || c.DiscountPercentage > 100 {
		return 0, false
	}
	return c.DiscountPercentage, true
}

// PreviewResult describes a dry-run coupon evaluation against a subtotal.
type PreviewResult struct {
	Code     string        `json:"code"`
	Percent  int32         `json:"percent"`
	Discount pricing.Money `json:"discount"`
	Applied  bool          `json:"applied"`
}

// Preview computes the discount a code would grant on the given subtotal.
func (s *Service) Preview(ctx context.Context, code string, subtotal pricing.Money) PreviewResult {
	pct, ok := s.Redeemable(ctx, code)
	if !ok {
		return PreviewResult{Code: NormalizeCode(code)}
	}
	return PreviewResult{
		Code:     NormalizeCode(code),
		Percent:  pct,
		Discount: pricing.Discount(subtotal, pct),
		Applied:  true,
	}
}

// Create validates and stores a new coupon.
func (s *Service) Create(ctx context.Context, code string, discountPct int32, active bool) (Coupon, error) {
	if s == nil || s.Store == nil {
		return Coupon{}, errors.New("coupon service not configured")
	}
	if NormalizeCode(code) == "" {
		return Coupon{}, errors.New("code is required")
	}
	if discountPct < 1 || discountPct > 100 {
		return Coupon{}, ErrInvalidPercent
	}
	return s.Store.Create(ctx, code, discountPct, active)
}

// List returns every stored coupon.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("coupon service not configured")
	}
	return s.Store.List(ctx)
}

// SetActive toggles a coupon's availability.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (Coupon, error) {
	if s == nil || s.Store == nil {
		return Coupon{}, errors.New("coupon service not configured")
	}
	return s.Store.SetActive(ctx, id, active)
}

// Delete removes a coupon.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("coupon service not configured")
	}
	return s.Store.Delete(ctx, id)
}
