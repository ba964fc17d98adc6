package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgOrderStore commits reconciled orders to Postgres.
type PgOrderStore struct {
	Pool *pgxpool.Pool
}

const uniqueViolation = "23505"

// Create inserts the order, its items and the guarded per-product stock
// decrements in a single transaction. Any decrement matching no rows aborts
// the whole transaction with ErrInsufficientStock, so stock can never go
// negative under concurrent checkouts.
func (s *PgOrderStore) Create(ctx context.Context, draft OrderDraft) (CommitResult, error) {
	if s == nil || s.Pool == nil {
		return CommitResult{}, errors.New("order store not configured")
	}
	if len(draft.Items) == 0 {
		return CommitResult{}, errors.New("order draft has no items")
	}

	addressJSON, err := json.Marshal(draft.Address)
	if err != nil {
		return CommitResult{}, fmt.Errorf("encode shipping address: %w", err)
	}

	// Retry only on order_number collisions; the number space is large
	// enough that a second attempt is already rare.
	for attempt := 0; attempt < 3; attempt++ {
		result, err := s.createOnce(ctx, draft, addressJSON, newOrderNumber())
		if err == nil {
			return result, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && strings.Contains(pgErr.ConstraintName, "order_number") {
			continue
		}
		return CommitResult{}, err
	}
	return CommitResult{}, errors.New("order number collision persisted across retries")
}

func (s *PgOrderStore) createOnce(ctx context.Context, draft OrderDraft, addressJSON []byte, orderNumber string) (CommitResult, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return CommitResult{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Aggregate quantities per product before decrementing so a product on
	// two lines is guarded once against its combined demand.
	demand := make(map[uuid.UUID]int, len(draft.Items))
	order := make([]uuid.UUID, 0, len(draft.Items))
	names := make(map[uuid.UUID]string, len(draft.Items))
	for _, item := range draft.Items {
		if _, seen := demand[item.ProductID]; !seen {
			order = append(order, item.ProductID)
			names[item.ProductID] = item.Name
		}
		demand[item.ProductID] += item.Quantity
	}
	for _, productID := range order {
		tag, err := tx.Exec(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - $2, updated_at = now()
			WHERE id = $1 AND stock_quantity >= $2`,
			productID.String(), demand[productID])
		if err != nil {
			return CommitResult{}, fmt.Errorf("decrement stock: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return CommitResult{}, fmt.Errorf("%w for %s", ErrInsufficientStock, names[productID])
		}
	}

	var (
		orderID uuid.UUID
		idText  string
	)
	var couponCode *string
	if draft.CouponCode != "" {
		couponCode = &draft.CouponCode
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, user_id, email, status, subtotal, shipping, discount, total, coupon_code, shipping_address)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		orderNumber, draft.UserID, draft.Email,
		draft.Summary.Subtotal, draft.Summary.Shipping, draft.Summary.Discount, draft.Summary.Total,
		couponCode, addressJSON,
	).Scan(&idText)
	if err != nil {
		return CommitResult{}, fmt.Errorf("insert order: %w", err)
	}
	if orderID, err = uuid.Parse(idText); err != nil {
		return CommitResult{}, fmt.Errorf("parse order id: %w", err)
	}

	for _, item := range draft.Items {
		extrasJSON, err := json.Marshal(item.SelectedExtras)
		if err != nil {
			return CommitResult{}, fmt.Errorf("encode extras: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, quantity, price_at_purchase, selected_extras)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID.String(), item.ProductID.String(), item.Name, item.Quantity, item.PriceAtPurchase, extrasJSON,
		); err != nil {
			return CommitResult{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return CommitResult{}, err
	}
	return CommitResult{OrderID: orderID, OrderNumber: orderNumber}, nil
}

// newOrderNumber generates a short customer-facing order reference.
func newOrderNumber() string {
	var buf [5]byte
	_, _ = rand.Read(buf[:])
	return "ORD-" + strings.ToUpper(hex.EncodeToString(buf[:]))
}
