package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Repository provides read access to products.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	BySlug(ctx context.Context, slug string) (Product, error)
	ByID(ctx context.Context, id string) (Product, error)
}

// MemoryRepository serves a fixed product list in insertion order.
type MemoryRepository struct {
	mu       sync.RWMutex
	products []Product
}

// NewMemoryRepository copies products into a new repository.
func NewMemoryRepository(products []Product) (*MemoryRepository, error) {
	ids := make(map[string]struct{}, len(products))
	slugs := make(map[string]struct{}, len(products))
	for _, p := range products {
		if p.ID == "" || p.Slug == "" {
			return nil, fmt.Errorf("product %q: id and slug are required", p.Title)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %q: price must not be negative", p.Slug)
		}
		if _, dup := ids[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if _, dup := slugs[p.Slug]; dup {
			return nil, fmt.Errorf("duplicate product slug %q", p.Slug)
		}
		ids[p.ID] = struct{}{}
		slugs[p.Slug] = struct{}{}
	}
	return &MemoryRepository{products: append([]Product(nil), products...)}, nil
}

// List returns a copy of all products.
func (r *MemoryRepository) List(_ context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Product(nil), r.products...), nil
}

// BySlug looks a product up by slug.
func (r *MemoryRepository) BySlug(_ context.Context, slug string) (Product, error) {
	return r.find(func(p Product) bool { return p.Slug == slug })
}

// ByID looks a product up by identifier.
func (r *MemoryRepository) ByID(_ context.Context, id string) (Product, error) {
	return r.find(func(p Product) bool { return p.ID == id })
}

func (r *MemoryRepository) find(match func(Product) bool) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if match(p) {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}
