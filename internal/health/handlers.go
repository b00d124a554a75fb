package health

import (
	"context"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/noskishop/internal/common"
)

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the readiness flag; the server clears it while draining.
func SetReady(v bool) {
	ready.Store(v)
}

// Probe checks a single dependency.
type Probe func(ctx context.Context) error

// Pinger is satisfied by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisProbe pings a Redis client.
func RedisProbe(client *redis.Client) Probe {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// DBProbe pings a database pool.
func DBProbe(p Pinger) Probe {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// Handler exposes HTTP handlers for health endpoints. Only configured
// dependencies are probed; a storefront running on in-memory stores has none.
type Handler struct {
	Probes  map[string]Probe
	Timeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "draining"})
		return
	}
	names := make([]string, 0, len(h.Probes))
	for name := range h.Probes {
		names = append(names, name)
	}
	sort.Strings(names)

	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	for _, name := range names {
		probe := h.Probes[name]
		if probe == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout())
		err := probe(ctx)
		cancel()
		if err != nil {
			status[name] = err.Error()
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	common.JSON(w, code, status)
}

func (h Handler) timeout() time.Duration {
	if h.Timeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.Timeout
}
