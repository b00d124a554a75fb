package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const listCacheKey = "catalog:products"

// Service serves products with an optional Redis cache in front of the repository.
type Service struct {
	repo   Repository
	cache  *Cache
	logger zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Repository Repository
	Cache      *Cache
	Logger     *zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("catalog repository is required")
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "catalog").Logger()
	}
	return &Service{repo: cfg.Repository, cache: cfg.Cache, logger: logger}, nil
}

// List returns all products, served from cache when possible.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var cached []Product
	if ok, err := s.cache.GetJSON(ctx, listCacheKey, &cached); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache read failed")
	} else if ok {
		return cached, nil
	}
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []Product{}
	}
	if err := s.cache.SetJSON(ctx, listCacheKey, products); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache write failed")
	}
	return products, nil
}

// BySlug returns the product with the given slug.
func (s *Service) BySlug(ctx context.Context, slug string) (Product, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return Product{}, ErrNotFound
	}
	return s.repo.BySlug(ctx, slug)
}

// ByID returns the product with the given identifier.
func (s *Service) ByID(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrNotFound
	}
	return s.repo.ByID(ctx, id)
}

// Refresh drops cached listings.
func (s *Service) Refresh(ctx context.Context) error {
	return s.cache.Invalidate(ctx, listCacheKey)
}
