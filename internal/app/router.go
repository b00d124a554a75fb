package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/noskishop/internal/cart"
	"github.com/noah-isme/noskishop/internal/catalog"
	"github.com/noah-isme/noskishop/internal/common"
	"github.com/noah-isme/noskishop/internal/health"
	"github.com/noah-isme/noskishop/internal/obs"
	"github.com/noah-isme/noskishop/internal/pricing"
	"github.com/noah-isme/noskishop/internal/ratelimit"
	"github.com/noah-isme/noskishop/internal/security"
)

func (a *App) routes(quotes *pricing.QuoteHandler, limits limiters) http.Handler {
	cfg := a.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if cfg.MetricsEnabled {
		httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBucketsMS), a.Registry)
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: a.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Total-Count", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(security.Headers{
		Enable:          cfg.SecurityHeaders,
		EnableHSTS:      cfg.AppEnv == "production",
		NoStorePrefixes: []string{"/api/v1/carts"},
	}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	}

	probes := map[string]health.Probe{}
	if a.Redis != nil {
		probes["redis"] = health.RedisProbe(a.Redis)
	}
	if a.DB != nil {
		probes["db"] = health.DBProbe(a.DB)
	}
	healthHandler := health.Handler{Probes: probes}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	catalogHandler := &catalog.Handler{Svc: a.Catalog, Currency: cfg.CurrencyCode, DefaultLimit: 20, MaxLimit: 100}
	cartHandler := &cart.Handler{Svc: a.Carts, Currency: cfg.CurrencyCode}
	idem := common.Idem{R: a.Redis, TTL: cfg.IdempotencyTTL}
	onLimitError := func(err error) {
		a.Logger.Warn().Err(err).Msg("rate limiter unavailable")
	}
	cartLimit := ratelimit.Handler{
		Limiter: limits.carts,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP("carts"), Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: onLimitError,
	}
	quoteLimit := ratelimit.Handler{
		Limiter: limits.quotes,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP("quote"), Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: onLimitError,
	}

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.List)
		v.Get("/products/{slug}", catalogHandler.Get)

		v.With(quoteLimit.Middleware).Post("/pricing/quote", quotes.Quote)

		v.Route("/carts", func(c chi.Router) {
			c.Get("/{id}", cartHandler.Get)
			c.Group(func(g chi.Router) {
				g.Use(cartLimit.Middleware)
				g.Use(idem.Middleware)
				g.Post("/", cartHandler.Create)
				g.Delete("/{id}", cartHandler.Delete)
				g.Post("/{id}/items", cartHandler.AddItem)
				g.Delete("/{id}/items/{productId}", cartHandler.RemoveItem)
				g.Put("/{id}/delivery", cartHandler.SetDelivery)
			})
		})
	})

	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
