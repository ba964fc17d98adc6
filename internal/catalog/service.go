package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kashvi-silver/backend-kashvi/internal/pricing"
)

// ProductStore abstracts the queries the service depends on, so handlers can
// be tested against a fake.
type ProductStore interface {
	List(ctx context.Context, p ListParams) ([]Product, int64, error)
	GetBySlug(ctx context.Context, slug string) (Product, error)
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	ApplyAdminPatch(ctx context.Context, id uuid.UUID, patch AdminPatch) (Product, error)
}

// RateSource supplies the live silver rate used to decorate product payloads
// with a computed price.
type RateSource interface {
	Current(ctx context.Context) (float64, error)
}

// PricedProduct is the public product payload: the truth record plus the
// derived display price. For weighed products Pricing carries the full
// breakdown; flat-priced products only echo Price.
type PricedProduct struct {
	Product
	DisplayPrice int64          `json:"displayPrice"`
	Pricing      *pricing.Quote `json:"pricing,omitempty"`
}

// Service orchestrates catalogue queries, price decoration, and caching.
type Service struct {
	Store        ProductStore
	Rates        RateSource
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
	Log          zerolog.Logger
}

// List returns a page of priced products plus the total count.
func (s *Service) List(ctx context.Context, p ListParams) ([]PricedProduct, int64, error) {
	if s == nil || s.Store == nil {
		return nil, 0, errors.New("catalog service not configured")
	}
	if p.Limit <= 0 {
		p.Limit = s.DefaultLimit
	}
	if s.MaxLimit > 0 && p.Limit > s.MaxLimit {
		p.Limit = s.MaxLimit
	}
	products, total, err := s.Store.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	rate := s.currentRate(ctx)
	out := make([]PricedProduct, 0, len(products))
	for _, product := range products {
		out = append(out, s.price(product, rate))
	}
	return out, total, nil
}

// Detail returns a single priced product by slug, served from cache when
// fresh. The cached entry stores the truth record only; the price is always
// recomputed against the current rate so a rate change shows up immediately.
func (s *Service) Detail(ctx context.Context, slug string) (PricedProduct, error) {
	if s == nil || s.Store == nil {
		return PricedProduct{}, errors.New("catalog service not configured")
	}
	var product Product
	hit, err := s.Cache.GetJSON(ctx, detailKey(slug), &product)
	if err != nil {
		s.Log.Warn().Err(err).Str("slug", slug).Msg("catalog cache read")
		hit = false
	}
	if !hit {
		product, err = s.Store.GetBySlug(ctx, slug)
		if err != nil {
			return PricedProduct{}, err
		}
		if err := s.Cache.SetJSON(ctx, detailKey(slug), product); err != nil {
			s.Log.Warn().Err(err).Str("slug", slug).Msg("catalog cache write")
		}
	}
	return s.price(product, s.currentRate(ctx)), nil
}

// ApplyAdminPatch updates admin-mutable fields and invalidates the cached
// detail entry.
func (s *Service) ApplyAdminPatch(ctx context.Context, id uuid.UUID, patch AdminPatch) (PricedProduct, error) {
	if s == nil || s.Store == nil {
		return PricedProduct{}, errors.New("catalog service not configured")
	}
	product, err := s.Store.ApplyAdminPatch(ctx, id, patch)
	if err != nil {
		return PricedProduct{}, err
	}
	if err := s.Cache.Invalidate(ctx, detailKey(product.Slug)); err != nil {
		s.Log.Warn().Err(err).Str("slug", product.Slug).Msg("catalog cache invalidate")
	}
	return s.price(product, s.currentRate(ctx)), nil
}

func (s *Service) currentRate(ctx context.Context) float64 {
	if s.Rates == nil {
		return 0
	}
	rate, err := s.Rates.Current(ctx)
	if err != nil {
		s.Log.Warn().Err(err).Msg("silver rate unavailable, falling back to flat prices")
		return 0
	}
	return rate
}

func (s *Service) price(product Product, rate float64) PricedProduct {
	priced := PricedProduct{Product: product, DisplayPrice: product.Price}
	if product.WeightGrams > 0 && rate > 0 {
		quote := pricing.QuoteSilver(product.WeightGrams, rate, product.MakingCharges)
		priced.DisplayPrice = quote.FinalPrice
		priced.Pricing = &quote
	}
	return priced
}
