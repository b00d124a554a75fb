package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/noskishop/internal/cart"
	"github.com/noah-isme/noskishop/internal/catalog"
	"github.com/noah-isme/noskishop/internal/config"
	"github.com/noah-isme/noskishop/internal/db"
	"github.com/noah-isme/noskishop/internal/events"
	"github.com/noah-isme/noskishop/internal/lock"
	"github.com/noah-isme/noskishop/internal/obs"
	"github.com/noah-isme/noskishop/internal/pricing"
	"github.com/noah-isme/noskishop/internal/ratelimit"
	"github.com/noah-isme/noskishop/internal/resilience"
)

// App holds the wired storefront: shared clients, services and the router.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Registry *prometheus.Registry
	Redis    *redis.Client
	DB       *pgxpool.Pool
	Router   http.Handler

	Catalog *catalog.Service
	Carts   *cart.Service
	Metrics *obs.DomainMetrics

	memoryCarts *cart.MemoryStore
}

// New connects the optional backing services named in cfg and wires every
// module. Without REDIS_URL and DATABASE_URL the storefront runs fully in memory.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	a := &App{Config: cfg, Logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.HasRedis() {
		client, err := connectRedis(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.Redis = client
	}
	if cfg.HasDatabase() {
		if cfg.DBMigrate {
			if err := db.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				a.Close()
				return nil, err
			}
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.DB = pool
	}

	var repo catalog.Repository
	if a.DB != nil {
		var breakerMetrics *resilience.Metrics
		if cfg.MetricsEnabled {
			breakerMetrics = resilience.NewMetrics(cfg.MetricsNamespace, a.Registry)
		}
		breakerLogger := logger.With().Str("component", "breaker").Logger()
		repo = catalog.Guarded{
			Next: catalog.PostgresRepository{DB: a.DB},
			Breaker: resilience.NewBreaker(resilience.BreakerConfig{
				Target:       "catalog_db",
				MinRequests:  5,
				FailureRatio: 0.5,
				OpenFor:      15 * time.Second,
				Ignore:       catalog.IsHealthyError,
				Logger:       &breakerLogger,
				Metrics:      breakerMetrics,
			}),
		}
	} else {
		mem, err := catalog.NewMemoryRepository(catalog.Seed())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		repo = mem
	}
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Repository: repo,
		Cache:      catalog.NewCache(a.Redis, cfg.CatalogCacheTTL),
		Logger:     &logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Catalog = catalogSvc

	a.Metrics = obs.NewDomainMetrics(cfg.MetricsNamespace, a.Registry)
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.LogNotifier{Logger: logger.With().Str("component", "events").Logger()},
	}}
	if cfg.MetricsEnabled {
		bus.Notifiers = append(bus.Notifiers, events.MetricsNotifier{Metrics: a.Metrics})
	}

	var (
		store  cart.Store
		locker lock.Locker
	)
	if a.Redis != nil {
		store = &cart.RedisStore{R: a.Redis, Prefix: "cart:"}
		locker = lock.Redis{R: a.Redis, Prefix: "lock:"}
	} else {
		a.memoryCarts = cart.NewMemoryStore()
		store = a.memoryCarts
		locker = lock.NewLocal()
	}
	rules := cfg.Pricing
	cartLogger := logger.With().Str("component", "cart").Logger()
	a.Carts = &cart.Service{
		Store:   store,
		Catalog: catalogSvc,
		Locker:  locker,
		Events:  bus,
		Rules:   &rules,
		TTL:     cfg.CartTTL,
		Logger:  &cartLogger,
	}

	quoteLogger := logger.With().Str("component", "pricing").Logger()
	quotes := &pricing.QuoteHandler{
		Rules:    &rules,
		Events:   bus,
		Currency: cfg.CurrencyCode,
		Logger:   &quoteLogger,
	}

	limits, err := a.limiters()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Router = a.routes(quotes, limits)
	return a, nil
}

type limiters struct {
	carts  ratelimit.Limiter
	quotes ratelimit.Limiter
}

// limiters picks the Redis sliding window for cart writes and a ulule store
// for quotes, falling back to process memory without Redis.
func (a *App) limiters() (limiters, error) {
	if a.Redis == nil {
		mem := ratelimit.NewMemory("ratelimit")
		return limiters{carts: mem, quotes: mem}, nil
	}
	quotes, err := ratelimit.NewRedis(a.Redis, "ratelimit:quote")
	if err != nil {
		return limiters{}, err
	}
	return limiters{
		carts:  ratelimit.Sliding{Client: a.Redis, Prefix: "ratelimit:"},
		quotes: quotes,
	}, nil
}

// Background runs maintenance loops until ctx is cancelled.
func (a *App) Background(ctx context.Context) {
	if a.memoryCarts != nil {
		go a.memoryCarts.Run(ctx, time.Minute)
	}
}

// Close releases backing connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("close redis")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func connectRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if cfg.TracingEnabled {
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
