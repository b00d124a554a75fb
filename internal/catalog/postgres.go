package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const productColumns = `id::text, slug, title, price`

// Querier is the subset of pgxpool.Pool used by PostgresRepository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads products from the products table.
type PostgresRepository struct {
	DB Querier
}

// List returns active products ordered for display.
func (r PostgresRepository) List(ctx context.Context) ([]Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE active ORDER BY position, title`)
}

// BySlug looks an active product up by slug.
func (r PostgresRepository) BySlug(ctx context.Context, slug string) (Product, error) {
	return r.one(ctx, `SELECT `+productColumns+` FROM products WHERE active AND slug = $1`, slug)
}

// ByID looks an active product up by identifier.
func (r PostgresRepository) ByID(ctx context.Context, id string) (Product, error) {
	return r.one(ctx, `SELECT `+productColumns+` FROM products WHERE active AND id::text = $1`, id)
}

func (r PostgresRepository) one(ctx context.Context, sql string, arg string) (Product, error) {
	products, err := r.query(ctx, sql, arg)
	if err != nil {
		return Product{}, err
	}
	if len(products) == 0 {
		return Product{}, ErrNotFound
	}
	return products[0], nil
}

func (r PostgresRepository) query(ctx context.Context, sql string, args ...any) ([]Product, error) {
	if r.DB == nil {
		return nil, fmt.Errorf("catalog: database not configured")
	}
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
