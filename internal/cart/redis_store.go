package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps carts as JSON documents with a TTL.
type RedisStore struct {
	R      *redis.Client
	Prefix string
}

func (s *RedisStore) key(id string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "cart:"
	}
	return prefix + id
}

// Load fetches the cart; a missing key maps to ErrNotFound.
func (s *RedisStore) Load(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart redis store not configured")
	}
	raw, err := s.R.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// Save writes the cart and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, c Cart, ttl time.Duration) error {
	if s == nil || s.R == nil {
		return errors.New("cart redis store not configured")
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.R.Set(ctx, s.key(c.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Delete removes the cart key.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.R == nil {
		return errors.New("cart redis store not configured")
	}
	n, err := s.R.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
