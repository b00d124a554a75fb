package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/noskishop/internal/catalog"
	"github.com/noah-isme/noskishop/internal/events"
	"github.com/noah-isme/noskishop/internal/lock"
	"github.com/noah-isme/noskishop/internal/pricing"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Catalog resolves products placed into carts.
type Catalog interface {
	ByID(ctx context.Context, id string) (catalog.Product, error)
}

var defaultLocker = lock.NewLocal()

// DefaultMaxUnits caps the units a single cart may hold.
const DefaultMaxUnits = 10000

// Service encapsulates cart domain operations. A nil Rules prices with
// pricing.DefaultRules.
type Service struct {
	Store    Store
	Catalog  Catalog
	Locker   lock.Locker
	Events   *events.Bus
	Rules    *pricing.Rules
	TTL      time.Duration
	LockTTL  time.Duration
	MaxUnits int
	Now      func() time.Time
	Logger   *zerolog.Logger
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 72 * time.Hour
	}
	return s.TTL
}

func (s *Service) lockTTL() time.Duration {
	if s.LockTTL <= 0 {
		return 5 * time.Second
	}
	return s.LockTTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) locker() lock.Locker {
	if s.Locker != nil {
		return s.Locker
	}
	return defaultLocker
}

func (s *Service) rules() pricing.Rules {
	if s.Rules == nil {
		return pricing.DefaultRules()
	}
	return *s.Rules
}

func (s *Service) maxUnits() int {
	if s.MaxUnits <= 0 {
		return DefaultMaxUnits
	}
	return s.MaxUnits
}

func (s *Service) ready() error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return nil
}

// Create opens an empty cart.
func (s *Service) Create(ctx context.Context) (Cart, error) {
	if err := s.ready(); err != nil {
		return Cart{}, err
	}
	now := s.now()
	c := Cart{
		ID:        uuid.NewString(),
		Units:     []Unit{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}
	if err := s.Store.Save(ctx, c, s.ttl()); err != nil {
		return Cart{}, fmt.Errorf("create cart: %w", err)
	}
	s.emit(ctx, events.TopicCartCreated, c.ID, nil)
	return c, nil
}

// Get loads a cart by id.
func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	if err := s.ready(); err != nil {
		return Cart{}, err
	}
	if err := validateID(id); err != nil {
		return Cart{}, err
	}
	return s.Store.Load(ctx, id)
}

// AddItem appends one unit of productID, priced from the catalog.
func (s *Service) AddItem(ctx context.Context, id, productID string) (Cart, error) {
	if err := s.ready(); err != nil {
		return Cart{}, err
	}
	if err := validateID(id); err != nil {
		return Cart{}, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return Cart{}, fmt.Errorf("product id is required: %w", ErrInvalidInput)
	}
	if s.Catalog == nil {
		return Cart{}, errors.New("cart catalog not configured")
	}
	product, err := s.Catalog.ByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Cart{}, fmt.Errorf("unknown product %q: %w", productID, ErrInvalidInput)
		}
		return Cart{}, fmt.Errorf("lookup product: %w", err)
	}
	if product.Price < 0 {
		return Cart{}, fmt.Errorf("product %q: %w", productID, pricing.ErrNegativePrice)
	}

	c, err := s.mutate(ctx, id, func(c *Cart) error {
		if len(c.Units) >= s.maxUnits() {
			return fmt.Errorf("cart holds the maximum of %d units: %w", s.maxUnits(), ErrInvalidInput)
		}
		c.Units = append(c.Units, Unit{ProductID: product.ID, Title: product.Title, Price: product.Price})
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	s.emit(ctx, events.TopicItemAdded, c.ID, map[string]any{
		"product_id": product.ID,
		"price":      product.Price,
		"count":      c.Count(),
	})
	s.priced(ctx, c)
	return c, nil
}

// RemoveItem drops one unit of productID.
func (s *Service) RemoveItem(ctx context.Context, id, productID string) (Cart, error) {
	if err := s.ready(); err != nil {
		return Cart{}, err
	}
	if err := validateID(id); err != nil {
		return Cart{}, err
	}
	productID = strings.TrimSpace(productID)
	c, err := s.mutate(ctx, id, func(c *Cart) error {
		if !c.removeOne(productID) {
			return fmt.Errorf("product %q not in cart: %w", productID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	s.emit(ctx, events.TopicItemRemoved, c.ID, map[string]any{
		"product_id": productID,
		"count":      c.Count(),
	})
	s.priced(ctx, c)
	return c, nil
}

// SetDelivery flips the delivery toggle of the cart.
func (s *Service) SetDelivery(ctx context.Context, id string, include bool) (Cart, error) {
	if err := s.ready(); err != nil {
		return Cart{}, err
	}
	if err := validateID(id); err != nil {
		return Cart{}, err
	}
	changed := false
	c, err := s.mutate(ctx, id, func(c *Cart) error {
		changed = c.Delivery != include
		c.Delivery = include
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	if changed {
		s.emit(ctx, events.TopicDeliveryToggled, c.ID, map[string]any{"include_delivery": include})
		s.priced(ctx, c)
	}
	return c, nil
}

// Delete discards the cart.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	err := s.locker().WithLock(ctx, lockKey(id), s.lockTTL(), func(ctx context.Context) error {
		return s.Store.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, events.TopicCartDeleted, id, nil)
	return nil
}

// View prices c and returns the storefront view. Reads emit no events.
func (s *Service) View(_ context.Context, c Cart) (View, error) {
	view, err := BuildView(c, s.rules())
	if err != nil {
		return View{}, fmt.Errorf("price cart: %w", err)
	}
	return view, nil
}

// priced announces the new price of a cart after a change to its contents or
// delivery flag.
func (s *Service) priced(ctx context.Context, c Cart) {
	view, err := BuildView(c, s.rules())
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn().Err(err).Str("cart_id", c.ID).Msg("price changed cart")
		}
		return
	}
	s.emit(ctx, events.TopicCartPriced, c.ID, map[string]any{
		"total":    view.Pricing.Total,
		"delivery": view.Pricing.Delivery,
		"discount": view.Pricing.Discount,
		"count":    view.Count,
	})
}

// mutate loads, modifies and saves a cart while holding its lock. The TTL is
// refreshed on every successful change.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Cart) error) (Cart, error) {
	var out Cart
	err := s.locker().WithLock(ctx, lockKey(id), s.lockTTL(), func(ctx context.Context) error {
		c, err := s.Store.Load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		now := s.now()
		c.UpdatedAt = now
		c.ExpiresAt = now.Add(s.ttl())
		if err := s.Store.Save(ctx, c, s.ttl()); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
		out = c
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	return out, nil
}

func (s *Service) emit(ctx context.Context, topic, cartID string, payload map[string]any) {
	if _, err := s.Events.Emit(ctx, topic, cartID, payload); err != nil && s.Logger != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Str("cart_id", cartID).Msg("cart event delivery failed")
	}
}

func lockKey(id string) string {
	return "cart:" + id
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid cart id: %w", ErrInvalidInput)
	}
	return nil
}
