package catalog

import (
	"context"
	"errors"

	"github.com/noah-isme/noskishop/internal/resilience"
)

// Guarded routes repository reads through a circuit breaker. Missing
// products count as healthy responses.
type Guarded struct {
	Next    Repository
	Breaker *resilience.Breaker
}

// IsHealthyError reports errors that must not trip a breaker.
func IsHealthyError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// List implements Repository.
func (g Guarded) List(ctx context.Context) ([]Product, error) {
	var out []Product
	err := g.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.Next.List(ctx)
		return err
	})
	return out, err
}

// BySlug implements Repository.
func (g Guarded) BySlug(ctx context.Context, slug string) (Product, error) {
	return g.one(ctx, func(ctx context.Context) (Product, error) { return g.Next.BySlug(ctx, slug) })
}

// ByID implements Repository.
func (g Guarded) ByID(ctx context.Context, id string) (Product, error) {
	return g.one(ctx, func(ctx context.Context) (Product, error) { return g.Next.ByID(ctx, id) })
}

func (g Guarded) one(ctx context.Context, fn func(context.Context) (Product, error)) (Product, error) {
	var out Product
	err := g.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}
