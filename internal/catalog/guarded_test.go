package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/noskishop/internal/resilience"
)

type flakyRepo struct {
	Repository
	err   error
	calls int
}

func (f *flakyRepo) List(ctx context.Context) ([]Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.Repository.List(ctx)
}

func newGuard(next Repository) Guarded {
	return Guarded{Next: next, Breaker: resilience.NewBreaker(resilience.BreakerConfig{
		Target:       "catalog_db",
		MinRequests:  2,
		FailureRatio: 1,
		OpenFor:      time.Minute,
		Ignore:       IsHealthyError,
	})}
}

func TestGuardedPassesThrough(t *testing.T) {
	g := newGuard(newSeedRepo(t))
	ctx := context.Background()

	products, err := g.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 4)

	p, err := g.ByID(ctx, products[2].ID)
	require.NoError(t, err)
	require.Equal(t, int64(300), p.Price)

	for i := 0; i < 3; i++ {
		_, err = g.BySlug(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	}
	require.Equal(t, resilience.Closed, g.Breaker.State())
}

func TestGuardedOpensOnRepositoryFailures(t *testing.T) {
	repo := &flakyRepo{Repository: newSeedRepo(t), err: errors.New("connection refused")}
	g := newGuard(repo)
	ctx := context.Background()

	_, err := g.List(ctx)
	require.ErrorContains(t, err, "connection refused")
	_, err = g.List(ctx)
	require.ErrorContains(t, err, "connection refused")

	_, err = g.List(ctx)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Equal(t, 2, repo.calls)

	svc, err := NewService(ServiceConfig{Repository: g})
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
}
