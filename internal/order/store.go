package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kashvi-silver/backend-kashvi/internal/pricing"
)

var (
	// ErrNotFound is returned when no order matches the lookup.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidTransition is returned when a status change breaks the
	// forward-only state machine.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrNotCancellable is returned when cancelling a non-pending order.
	ErrNotCancellable = errors.New("only pending orders can be cancelled")
)

// Item is a persisted order line.
type Item struct {
	ID              uuid.UUID     `json:"id"`
	ProductID       uuid.UUID     `json:"productId"`
	Name            string        `json:"name"`
	Quantity        int32         `json:"quantity"`
	PriceAtPurchase pricing.Money `json:"priceAtPurchase"`
	SelectedExtras  []string      `json:"selectedExtras,omitempty"`
}

// Order is the persisted order header with optional items.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	Email           string          `json:"email"`
	Status          Status          `json:"status"`
	Subtotal        pricing.Money   `json:"subtotal"`
	Shipping        pricing.Money   `json:"shipping"`
	Discount        pricing.Money   `json:"discount"`
	Total           pricing.Money   `json:"total"`
	CouponCode      *string         `json:"couponCode,omitempty"`
	ShippingAddress json.RawMessage `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	Items           []Item          `json:"items,omitempty"`
}

// Store provides pgx-backed access to orders.
type Store struct {
	Pool *pgxpool.Pool
}

const orderColumns = `id, order_number, user_id, email, status, subtotal, shipping, discount, total, coupon_code, shipping_address, created_at`

// ListByUser returns a page of the user's orders, newest first, plus the
// total count.
func (s *Store) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]Order, int64, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("order store not configured")
	}
	var total int64
	if err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	out := make([]Order, 0, limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

// GetForUser loads one order with its items, scoped to the owning user.
func (s *Store) GetForUser(ctx context.Context, id uuid.UUID, userID string) (Order, error) {
	if s == nil || s.Pool == nil {
		return Order{}, errors.New("order store not configured")
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		id.String(), userID)
	o, err := scanOrder(row)
	if err != nil {
		return Order{}, err
	}
	items, err := s.itemsFor(ctx, o.ID)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

// GetStatus returns the current status of an order.
func (s *Store) GetStatus(ctx context.Context, id uuid.UUID) (Status, error) {
	if s == nil || s.Pool == nil {
		return "", errors.New("order store not configured")
	}
	var status string
	err := s.Pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id.String()).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get order status: %w", err)
	}
	return Status(status), nil
}

// SetStatusFrom applies a status change only if the row still carries the
// expected current status, so concurrent admin updates cannot skip states.
func (s *Store) SetStatusFrom(ctx context.Context, id uuid.UUID, from, to Status) error {
	if s == nil || s.Pool == nil {
		return errors.New("order store not configured")
	}
	tag, err := s.Pool.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id.String(), string(from), string(to))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// CancelPending flips a pending order to cancelled and restores the stock
// its items consumed, all in one transaction.
func (s *Store) CancelPending(ctx context.Context, id uuid.UUID, userID string) (Order, error) {
	if s == nil || s.Pool == nil {
		return Order{}, errors.New("order store not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id.String(), userID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("lock order: %w", err)
	}
	if Status(status) != StatusPending {
		return Order{}, ErrNotCancellable
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products p
		SET stock_quantity = p.stock_quantity + i.quantity, updated_at = now()
		FROM order_items i
		WHERE i.order_id = $1 AND i.product_id = p.id`,
		id.String()); err != nil {
		return Order{}, fmt.Errorf("restore stock: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status = 'cancelled', updated_at = now() WHERE id = $1`,
		id.String()); err != nil {
		return Order{}, fmt.Errorf("cancel order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return s.GetForUser(ctx, id, userID)
}

func (s *Store) itemsFor(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, product_id, name, quantity, price_at_purchase, selected_extras
		FROM order_items WHERE order_id = $1`,
		orderID.String())
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	items := make([]Item, 0, 8)
	for rows.Next() {
		var (
			it         Item
			idText     string
			productID  string
			extrasJSON []byte
		)
		if err := rows.Scan(&idText, &productID, &it.Name, &it.Quantity, &it.PriceAtPurchase, &extrasJSON); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if it.ID, err = uuid.Parse(idText); err != nil {
			return nil, fmt.Errorf("parse item id: %w", err)
		}
		if it.ProductID, err = uuid.Parse(productID); err != nil {
			return nil, fmt.Errorf("parse item product id: %w", err)
		}
		if len(extrasJSON) > 0 {
			if err := json.Unmarshal(extrasJSON, &it.SelectedExtras); err != nil {
				return nil, fmt.Errorf("decode item extras: %w", err)
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o           Order
		idText      string
		status      string
		addressJSON []byte
	)
	err := row.Scan(&idText, &o.OrderNumber, &o.UserID, &o.Email, &status,
		&o.Subtotal, &o.Shipping, &o.Discount, &o.Total, &o.CouponCode, &addressJSON, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	if o.ID, err = uuid.Parse(idText); err != nil {
		return Order{}, fmt.Errorf("parse order id: %w", err)
	}
	o.Status = Status(status)
	o.ShippingAddress = json.RawMessage(addressJSON)
	return o, nil
}
