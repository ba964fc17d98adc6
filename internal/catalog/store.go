package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("product not found")

const productColumns = `id, name, slug, description, price, weight_grams, making_charges, stock_quantity, hot_deal, extra_options, created_at, updated_at`

// Store runs product queries against Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// ListParams captures filters for the public product listing.
type ListParams struct {
	HotDeal *bool
	Page    int
	Limit   int
}

// List returns a page of products plus the unfiltered total.
func (s *Store) List(ctx context.Context, p ListParams) ([]Product, int64, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("catalog store not configured")
	}
	where := ""
	args := []any{}
	if p.HotDeal != nil {
		where = "WHERE hot_deal = $1"
		args = append(args, *p.HotDeal)
	}
	var total int64
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if p.Page > 1 {
		offset = (p.Page - 1) * limit
	}
	query := fmt.Sprintf(
		"SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		productColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetBySlug loads a single product by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog store not configured")
	}
	row := s.Pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE slug = $1", slug)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// GetByID loads a single product by id.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog store not configured")
	}
	row := s.Pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id.String())
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// ByIDs fetches the truth records for the given ids in one round trip. Ids
// without a matching product are simply absent from the result; callers
// decide how to treat the gap. Reads go straight to the database, never
// through the cache, because checkout depends on current stock.
func (s *Store) ByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog store not configured")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	asText := make([]string, 0, len(ids))
	for _, id := range ids {
		asText = append(asText, id.String())
	}
	rows, err := s.Pool.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ANY($1::uuid[])", asText)
	if err != nil {
		return nil, fmt.Errorf("batch products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ApplyAdminPatch updates the mutable admin fields and returns the fresh row.
func (s *Store) ApplyAdminPatch(ctx context.Context, id uuid.UUID, patch AdminPatch) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog store not configured")
	}
	sets := []string{"updated_at = now()"}
	args := []any{id.String()}
	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.StockQuantity != nil {
		appendSet("stock_quantity", *patch.StockQuantity)
	}
	if patch.WeightGrams != nil {
		appendSet("weight_grams", *patch.WeightGrams)
	}
	if patch.MakingCharges != nil {
		appendSet("making_charges", *patch.MakingCharges)
	}
	if patch.HotDeal != nil {
		appendSet("hot_deal", *patch.HotDeal)
	}
	query := fmt.Sprintf(
		"UPDATE products SET %s WHERE id = $1 RETURNING %s",
		strings.Join(sets, ", "), productColumns,
	)
	row := s.Pool.QueryRow(ctx, query, args...)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p      Product
		idText string
		extras []byte
	)
	if err := row.Scan(
		&idText, &p.Name, &p.Slug, &p.Description, &p.Price,
		&p.WeightGrams, &p.MakingCharges, &p.StockQuantity, &p.HotDeal,
		&extras, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return Product{}, err
	}
	parsed, err := uuid.Parse(idText)
	if err != nil {
		return Product{}, fmt.Errorf("parse product id: %w", err)
	}
	p.ID = parsed
	if len(extras) > 0 {
		if err := json.Unmarshal(extras, &p.ExtraOptions); err != nil {
			return Product{}, fmt.Errorf("decode extra options: %w", err)
		}
	}
	return p, nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
