package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kashvi-silver/backend-kashvi/internal/catalog"
	"github.com/kashvi-silver/backend-kashvi/internal/common"
	"github.com/kashvi-silver/backend-kashvi/internal/events"
	"github.com/kashvi-silver/backend-kashvi/internal/obs"
	"github.com/kashvi-silver/backend-kashvi/internal/pricing"
)

// ErrInsufficientStock is returned when a guarded stock decrement affects no
// rows, meaning another order consumed the stock first.
var ErrInsufficientStock = errors.New("insufficient stock")

// RateSource supplies the live silver rate for unit price derivation.
type RateSource interface {
	Current(ctx context.Context) (float64, error)
}

// ProductSource fetches the trusted product records for submitted cart lines.
type ProductSource interface {
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error)
}

// CouponSource resolves a coupon code to its discount percentage. A false
// second return means no discount applies; it is never an abort.
type CouponSource interface {
	Redeemable(ctx context.Context, code string) (int32, bool)
}

// OrderStore commits the reconciled order. Implementations must insert the
// order, its items and the guarded stock decrements in one transaction and
// return ErrInsufficientStock when any decrement matches no rows.
type OrderStore interface {
	Create(ctx context.Context, draft OrderDraft) (CommitResult, error)
}

// Addr is the shipping address persisted verbatim with the order.
type Addr struct {
	ReceiverName string `json:"receiverName" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode" validate:"required"`
	Country      string `json:"country"`
}

// CartItem is a single submitted cart line. Only the id, quantity and extra
// names are trusted as selections; every price is re-derived server side.
type CartItem struct {
	ID             string   `json:"id" validate:"required"`
	Quantity       int      `json:"quantity" validate:"required,gte=1,lte=100"`
	SelectedExtras []string `json:"selectedExtras" validate:"omitempty,dive,min=1"`
}

// Input is the checkout request payload.
type Input struct {
	CartItems       []CartItem `json:"cartItems" validate:"required,min=1,max=50,dive"`
	ShippingAddress Addr       `json:"shippingAddress"`
	UserID          string     `json:"userId" validate:"required"`
	Email           string     `json:"email" validate:"required,email"`
	CouponCode      string     `json:"couponCode"`
}

// LineQuote is the server-derived pricing for one cart line.
type LineQuote struct {
	ProductID      uuid.UUID      `json:"productId"`
	Name           string         `json:"name"`
	Quantity       int            `json:"quantity"`
	UnitPrice      pricing.Money  `json:"unitPrice"`
	ExtrasTotal    pricing.Money  `json:"extrasTotal"`
	LineTotal      pricing.Money  `json:"lineTotal"`
	Extras         []string       `json:"extras,omitempty"`
	PriceBreakdown *pricing.Quote `json:"priceBreakdown,omitempty"`
}

// QuoteResult is the response of the pricing preview.
type QuoteResult struct {
	Lines   []LineQuote     `json:"lines"`
	Pricing pricing.Summary `json:"pricing"`
	Coupon  string          `json:"coupon,omitempty"`
}

// Output is the response of a committed checkout.
type Output struct {
	OrderID     string          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Status      string          `json:"status"`
	Pricing     pricing.Summary `json:"pricing"`
}

// DraftItem is a reconciled order line ready for persistence.
type DraftItem struct {
	ProductID       uuid.UUID
	Name            string
	Quantity        int
	PriceAtPurchase pricing.Money
	SelectedExtras  []string
}

// OrderDraft carries everything the store needs to commit an order.
type OrderDraft struct {
	UserID     string
	Email      string
	CouponCode string
	Address    Addr
	Items      []DraftItem
	Summary    pricing.Summary
}

// CommitResult identifies the committed order.
type CommitResult struct {
	OrderID     uuid.UUID
	OrderNumber string
}

// Service re-derives every price from trusted data and commits orders
// atomically. Client-submitted prices are never read.
type Service struct {
	Rates    RateSource
	Products ProductSource
	Coupons  CouponSource
	Orders   OrderStore
	Events   *events.Bus
	Validate *validator.Validate
	Log      zerolog.Logger

	FreeShippingThreshold pricing.Money
	ShippingFlatFee       pricing.Money
}

// Quote reconciles the submitted cart and returns the derived pricing
// without persisting anything.
func (s *Service) Quote(ctx context.Context, in Input) (QuoteResult, error) {
	if s == nil || s.Products == nil {
		return QuoteResult{}, errors.New("checkout service not configured")
	}
	result, err := s.reconcile(ctx, in, true)
	if err != nil {
		return QuoteResult{}, err
	}
	if obs.QuotesTotal != nil {
		obs.QuotesTotal.Inc()
	}
	return result.quote, nil
}

// Create reconciles the cart and commits the order together with its stock
// decrements in one transaction.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Products == nil || s.Orders == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	rec, err := s.reconcile(ctx, in, false)
	if err != nil {
		return Output{}, err
	}
	committed, err := s.Orders.Create(ctx, rec.draft)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			s.reject(obs.RejectReasonInsufficientStock)
			return Output{}, common.NewAppError("INSUFFICIENT_STOCK", err.Error(), http.StatusBadRequest, err)
		}
		s.reject(obs.RejectReasonInternal)
		return Output{}, fmt.Errorf("commit order: %w", err)
	}
	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.Inc()
	}
	if obs.OrderTotalRupees != nil {
		obs.OrderTotalRupees.Observe(float64(rec.draft.Summary.Total))
	}
	if s.Events != nil {
		payload := map[string]any{
			"orderId":     committed.OrderID.String(),
			"orderNumber": committed.OrderNumber,
			"email":       in.Email,
			"total":       rec.draft.Summary.Total,
		}
		if _, err := s.Events.Emit(ctx, events.TopicOrderCreated, committed.OrderID, payload); err != nil {
			s.Log.Warn().Err(err).Str("order", committed.OrderNumber).Msg("order created event emit failed")
		}
	}
	return Output{
		OrderID:     committed.OrderID.String(),
		OrderNumber: committed.OrderNumber,
		Status:      "pending",
		Pricing:     rec.draft.Summary,
	}, nil
}

type reconciled struct {
	quote QuoteResult
	draft OrderDraft
}

func (s *Service) reconcile(ctx context.Context, in Input, preview bool) (reconciled, error) {
	if err := s.validateInput(in, preview); err != nil {
		s.reject(obs.RejectReasonValidation)
		return reconciled{}, common.NewAppError("VALIDATION", "invalid checkout payload", http.StatusBadRequest, err)
	}

	ids := make([]uuid.UUID, 0, len(in.CartItems))
	seen := make(map[uuid.UUID]bool, len(in.CartItems))
	lineIDs := make([]uuid.UUID, len(in.CartItems))
	for i, item := range in.CartItems {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			s.reject(obs.RejectReasonValidation)
			return reconciled{}, common.NewAppError("VALIDATION",
				fmt.Sprintf("cart line %d: invalid product id", i+1), http.StatusBadRequest, err)
		}
		lineIDs[i] = id
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	products, err := s.Products.ByIDs(ctx, ids)
	if err != nil {
		s.reject(obs.RejectReasonInternal)
		return reconciled{}, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	rate := s.currentRate(ctx)

	// Quantities aggregate per product so the stock check sees true demand
	// even when one id appears on multiple lines.
	demand := make(map[uuid.UUID]int, len(ids))
	for i, item := range in.CartItems {
		demand[lineIDs[i]] += item.Quantity
	}

	lines := make([]LineQuote, 0, len(in.CartItems))
	items := make([]DraftItem, 0, len(in.CartItems))
	priced := make([]pricing.Line, 0, len(in.CartItems))
	for i, item := range in.CartItems {
		product, ok := byID[lineIDs[i]]
		if !ok {
			s.reject(obs.RejectReasonUnknownProduct)
			return reconciled{}, common.NewAppError("UNKNOWN_PRODUCT",
				fmt.Sprintf("cart line %d: product %s not found", i+1, item.ID), http.StatusBadRequest, nil)
		}
		if int(product.StockQuantity) < demand[product.ID] {
			s.reject(obs.RejectReasonInsufficientStock)
			return reconciled{}, common.NewAppError("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient stock for %s", product.Name), http.StatusBadRequest, nil)
		}

		unit, breakdown := s.unitPrice(product, rate)
		extras, extrasTotal := s.resolveExtras(product, item.SelectedExtras)
		unit += extrasTotal

		lines = append(lines, LineQuote{
			ProductID:      product.ID,
			Name:           product.Name,
			Quantity:       item.Quantity,
			UnitPrice:      unit,
			ExtrasTotal:    extrasTotal,
			LineTotal:      pricing.Money(item.Quantity) * unit,
			Extras:         extras,
			PriceBreakdown: breakdown,
		})
		items = append(items, DraftItem{
			ProductID:       product.ID,
			Name:            product.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: unit,
			SelectedExtras:  extras,
		})
		priced = append(priced, pricing.Line{Qty: item.Quantity, UnitPrice: unit})
	}

	couponCode := ""
	var discountPct int32
	if strings.TrimSpace(in.CouponCode) != "" && s.Coupons != nil {
		if pct, ok := s.Coupons.Redeemable(ctx, in.CouponCode); ok {
			discountPct = pct
			couponCode = strings.ToUpper(strings.TrimSpace(in.CouponCode))
		}
	}

	summary := pricing.ComputeTotals(priced, discountPct, s.FreeShippingThreshold, s.ShippingFlatFee)

	return reconciled{
		quote: QuoteResult{Lines: lines, Pricing: summary, Coupon: couponCode},
		draft: OrderDraft{
			UserID:     in.UserID,
			Email:      in.Email,
			CouponCode: couponCode,
			Address:    in.ShippingAddress,
			Items:      items,
			Summary:    summary,
		},
	}, nil
}

// validateInput runs struct validation. The preview path only requires cart
// lines since nothing is persisted.
func (s *Service) validateInput(in Input, preview bool) error {
	if len(in.CartItems) == 0 {
		return errors.New("cartItems must not be empty")
	}
	if s.Validate == nil {
		return nil
	}
	if preview {
		return s.Validate.Var(in.CartItems, "required,min=1,max=50,dive")
	}
	return s.Validate.Struct(in)
}

// unitPrice derives the base unit price: weighed products use the silver
// calculator; flat-priced products (or a missing rate) fall back to the
// stored price.
func (s *Service) unitPrice(product catalog.Product, rate float64) (pricing.Money, *pricing.Quote) {
	if product.WeightGrams > 0 && rate > 0 {
		q := pricing.QuoteSilver(product.WeightGrams, rate, product.MakingCharges)
		if q.FinalPrice > 0 {
			return q.FinalPrice, &q
		}
	}
	return pricing.Money(product.Price), nil
}

// resolveExtras keeps only extras present on the product record, summing
// their stored prices. Unknown names are dropped, never billed.
func (s *Service) resolveExtras(product catalog.Product, selected []string) ([]string, pricing.Money) {
	if len(selected) == 0 {
		return nil, 0
	}
	kept := make([]string, 0, len(selected))
	var total pricing.Money
	for _, name := range selected {
		opt, ok := product.ExtraByName(name)
		if !ok {
			s.Log.Debug().Str("product", product.Slug).Str("extra", name).Msg("dropping unknown extra")
			continue
		}
		kept = append(kept, opt.Name)
		total += pricing.Money(opt.Price)
	}
	if len(kept) == 0 {
		return nil, 0
	}
	return kept, total
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

func (s *Service) reject(reason string) {
	if obs.OrdersRejectedTotal != nil {
		obs.OrdersRejectedTotal.WithLabelValues(reason).Inc()
	}
}
