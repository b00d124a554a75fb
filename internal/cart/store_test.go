package cart

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.Now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, Cart{ID: "a"}, time.Hour))
	require.NoError(t, store.Save(ctx, Cart{ID: "b", ExpiresAt: now.Add(3 * time.Hour)}, time.Hour))

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), got.ExpiresAt)

	now = now.Add(2 * time.Hour)
	_, err = store.Load(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Load(ctx, "b")
	require.NoError(t, err)

	require.Equal(t, 1, store.Sweep())
	require.ErrorIs(t, store.Delete(ctx, "a"), ErrNotFound)
	require.NoError(t, store.Delete(ctx, "b"))
	require.ErrorIs(t, store.Delete(ctx, "b"), ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := Cart{ID: "a", Units: []Unit{{ProductID: "kis", Price: 200}}}
	require.NoError(t, store.Save(ctx, c, time.Hour))
	c.Units[0].Price = 1

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	got.Units[0].Price = 2

	again, err := store.Load(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, int64(200), again.Units[0].Price)
}

func TestMemoryStoreRunStopsOnCancel(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := &RedisStore{R: client}

	_, err := store.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	c := Cart{ID: "c-1", Delivery: true, Units: []Unit{{ProductID: "kis", Title: "Ле Кис-Кис", Price: 200}}}
	require.NoError(t, store.Save(ctx, c, 30*time.Minute))
	require.True(t, mr.Exists("cart:c-1"))
	require.Equal(t, 30*time.Minute, mr.TTL("cart:c-1"))

	got, err := store.Load(ctx, "c-1")
	require.NoError(t, err)
	require.Equal(t, c.Units, got.Units)
	require.True(t, got.Delivery)

	mr.FastForward(31 * time.Minute)
	_, err = store.Load(ctx, "c-1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, c, time.Minute))
	require.NoError(t, store.Delete(ctx, "c-1"))
	require.ErrorIs(t, store.Delete(ctx, "c-1"), ErrNotFound)
}

func TestRedisStoreCorruptDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set("shop:bad", "{not json"))

	store := &RedisStore{R: client, Prefix: "shop:"}
	_, err := store.Load(context.Background(), "bad")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
