package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sliding implements a sliding window rate limiter backed by Redis sorted sets.
type Sliding struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

// Allow registers an event for the given key and returns whether it is within the limit.
func (l Sliding) Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error) {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	until := now.Add(window)
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, until, nil
	}

	score := float64(now.UnixNano())
	cutoff := float64(now.Add(-window).UnixNano())
	redisKey := l.Prefix + key
	member := fmt.Sprintf("%s:%s", key, uuid.NewString())

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%f", cutoff))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: score, Member: member})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, until, fmt.Errorf("ratelimit: %w", err)
	}

	current := int(countCmd.Val())
	remaining = max - current
	if remaining < 0 {
		remaining = 0
	}
	return current <= max, remaining, until, nil
}
