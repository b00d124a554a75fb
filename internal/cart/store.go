package cart

import (
	"context"
	"sync"
	"time"
)

// Store persists carts for the length of a shopping session.
type Store interface {
	Load(ctx context.Context, id string) (Cart, error)
	Save(ctx context.Context, c Cart, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]Cart
	Now   func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

func (s *MemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Load returns a copy of the cart, or ErrNotFound when absent or expired.
func (s *MemoryStore) Load(_ context.Context, id string) (Cart, error) {
	s.mu.RLock()
	c, ok := s.carts[id]
	s.mu.RUnlock()
	if !ok || s.expired(c) {
		return Cart{}, ErrNotFound
	}
	return c.clone(), nil
}

// Save stores a copy of c. ExpiresAt is derived from ttl when the cart has none.
func (s *MemoryStore) Save(_ context.Context, c Cart, ttl time.Duration) error {
	c = c.clone()
	if c.ExpiresAt.IsZero() && ttl > 0 {
		c.ExpiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.carts == nil {
		s.carts = make(map[string]Cart)
	}
	s.carts[c.ID] = c
	return nil
}

// Delete removes the cart; ErrNotFound when it is absent or expired.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.carts, id)
	if s.expired(c) {
		return ErrNotFound
	}
	return nil
}

// Sweep drops expired carts and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, c := range s.carts {
		if s.expired(c) {
			delete(s.carts, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) expired(c Cart) bool {
	return !c.ExpiresAt.IsZero() && !s.now().Before(c.ExpiresAt)
}
