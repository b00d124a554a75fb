package lock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/noskishop/internal/resilience"
)

const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`

// Redis provides a Redis-backed lock shared by every API instance. Keys are
// stored under Prefix, "lock:" when empty.
type Redis struct {
	R            *redis.Client
	Prefix       string
	RetryBackoff time.Duration
}

// WithLock executes fn while holding the lock for key. The lock is released
// even if fn returns an error. Cancelling ctx while waiting aborts with ctx.Err().
func (l Redis) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.R == nil {
		return errors.New("lock: redis client not configured")
	}
	if fn == nil {
		return ErrNoCallback
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retry := l.RetryBackoff
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	prefix := l.Prefix
	if prefix == "" {
		prefix = "lock:"
	}
	redisKey := prefix + key
	token := uuid.NewString()

	for attempt := 1; ; attempt++ {
		ok, err := l.R.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			defer l.release(context.Background(), redisKey, token)
			return fn(ctx)
		}
		timer := time.NewTimer(resilience.Backoff(retry, min(attempt, 4), 0.2))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l Redis) release(ctx context.Context, key, token string) {
	if err := l.R.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unknown command") {
			// no scripting support; only delete if we still own it
			if val, getErr := l.R.Get(ctx, key).Result(); getErr == nil && val == token {
				_ = l.R.Del(ctx, key).Err()
			}
		}
	}
}
