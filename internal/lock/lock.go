package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNoCallback is returned when WithLock is called without a function.
var ErrNoCallback = errors.New("lock: callback not provided")

// Locker serialises work on a key.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}
