package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Fixed adapts a ulule/limiter store, which counts hits in fixed windows.
type Fixed struct {
	Store limiter.Store
}

// NewMemory returns a process-local limiter for deployments without Redis.
func NewMemory(prefix string) Fixed {
	return Fixed{Store: limitermemory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          prefix,
		CleanUpInterval: time.Minute,
	})}
}

// NewRedis returns a ulule/limiter store sharing counters through Redis.
func NewRedis(client *redis.Client, prefix string) (Fixed, error) {
	store, err := limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
	if err != nil {
		return Fixed{}, fmt.Errorf("ratelimit: redis store: %w", err)
	}
	return Fixed{Store: store}, nil
}

// Allow implements Limiter.
func (f Fixed) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	if f.Store == nil || max <= 0 || window <= 0 {
		return true, max, time.Now().Add(window), nil
	}
	lc, err := f.Store.Get(ctx, key, limiter.Rate{Period: window, Limit: int64(max)})
	if err != nil {
		return false, 0, time.Now().Add(window), fmt.Errorf("ratelimit: %w", err)
	}
	return !lc.Reached, int(lc.Remaining), time.Unix(lc.Reset, 0), nil
}
