package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/noskishop/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	DatabaseURL        string
	DBMigrate          bool
	CORSAllowedOrigins []string

	CartTTL         time.Duration
	CatalogCacheTTL time.Duration
	IdempotencyTTL  time.Duration
	CurrencyCode    string
	Pricing         pricing.Rules

	RateLimitWindow time.Duration
	RateLimitMax    int
	BodyLimitBytes  int64
	SecurityHeaders bool

	LogFormat         string
	LogLevel          string
	MetricsEnabled    bool
	MetricsNamespace  string
	MetricsBucketsMS  string
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		DBMigrate:          parseBool(k.String("DB_MIGRATE"), true),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CartTTL:            parseDuration(k.String("CART_TTL"), "72h"),
		CatalogCacheTTL:    parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		CurrencyCode:       strings.ToUpper(valueOrDefault(k.String("CURRENCY_CODE"), "RUB")),
		RateLimitWindow:    parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:       parseInt(k.String("RATE_LIMIT_MAX"), 120),
		BodyLimitBytes:     int64(parseInt(k.String("BODY_LIMIT_BYTES"), 1<<20)),
		SecurityHeaders:    parseBool(k.String("SECURITY_HEADERS"), true),
		LogFormat:          valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:           valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsEnabled:     parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsNamespace:   valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "noskishop"),
		MetricsBucketsMS:   strings.TrimSpace(k.String("OBS_METRICS_BUCKETS_MS")),
		TracingEnabled:     parseBool(k.String("OBS_ENABLE_TRACING"), false),
		OTLPEndpoint:       strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSampleRate:  parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
	}

	defaults := pricing.DefaultRules()
	cfg.Pricing = pricing.Rules{
		DeliveryFee:      int64(parseInt(k.String("PRICING_DELIVERY_FEE"), int(defaults.DeliveryFee))),
		FreeDeliveryFrom: int64(parseInt(k.String("PRICING_FREE_DELIVERY_FROM"), int(defaults.FreeDeliveryFrom))),
		BulkDiscountFrom: int64(parseInt(k.String("PRICING_BULK_DISCOUNT_FROM"), int(defaults.BulkDiscountFrom))),
	}
	if err := cfg.Pricing.Validate(); err != nil {
		return nil, fmt.Errorf("pricing rules: %w", err)
	}
	if cfg.RateLimitMax < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must not be negative: %d", cfg.RateLimitMax)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// HasRedis reports whether a Redis URL was configured.
func (c *Config) HasRedis() bool { return c.RedisURL != "" }

// HasDatabase reports whether the catalog should be served from Postgres.
func (c *Config) HasDatabase() bool { return c.DatabaseURL != "" }

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
