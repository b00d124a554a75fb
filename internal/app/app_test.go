package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/noskishop/internal/app"
	"github.com/noah-isme/noskishop/internal/cart"
	"github.com/noah-isme/noskishop/internal/catalog"
	"github.com/noah-isme/noskishop/internal/config"
	"github.com/noah-isme/noskishop/internal/pricing"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:           "test",
		CartTTL:          time.Hour,
		CatalogCacheTTL:  time.Minute,
		IdempotencyTTL:   time.Hour,
		CurrencyCode:     "RUB",
		Pricing:          pricing.DefaultRules(),
		RateLimitWindow:  time.Minute,
		RateLimitMax:     100,
		BodyLimitBytes:   1 << 20,
		SecurityHeaders:  true,
		MetricsEnabled:   true,
		MetricsNamespace: "noskishop_test",
	}
}

func newApp(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func call(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cartView(t *testing.T, rec *httptest.ResponseRecorder) cart.View {
	t.Helper()
	var resp struct {
		Data cart.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func productIDs(t *testing.T, h http.Handler) map[string]string {
	t.Helper()
	rec := call(t, h, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []catalog.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	ids := make(map[string]string, len(resp.Data))
	for _, p := range resp.Data {
		ids[p.Slug] = p.ID
	}
	return ids
}

func TestStorefrontInMemory(t *testing.T) {
	a := newApp(t, testConfig())
	h := a.Router

	ids := productIDs(t, h)
	require.Len(t, ids, 4)

	rec := call(t, h, http.MethodPost, "/api/v1/carts", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	base := "/api/v1/carts/" + cartView(t, rec).ID

	for _, slug := range []string{"le-kis-kis", "le-bratets-lis", "le-khokhloma"} {
		rec = call(t, h, http.MethodPost, base+"/items", `{"productId":"`+ids[slug]+`"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	require.Equal(t, pricing.Money(600), cartView(t, rec).Pricing.Total)

	rec = call(t, h, http.MethodPut, base+"/delivery", `{"includeDelivery":true}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := cartView(t, rec)
	require.Equal(t, 3, view.Count)
	require.Equal(t, pricing.Money(1100), view.Pricing.Total)
	require.Equal(t, "RUB", view.Currency)

	rec = call(t, h, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	metrics := rec.Body.String()
	require.Contains(t, metrics, `noskishop_test_cart_items_total{action="added"} 3`)
	require.Contains(t, metrics, "noskishop_test_carts_created_total 1")
	require.Contains(t, metrics, "noskishop_test_http_requests_total")
}

func TestStorefrontWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()
	a := newApp(t, cfg)
	h := a.Router
	require.NotNil(t, a.Redis)

	ids := productIDs(t, h)
	require.True(t, mr.Exists("catalog:products"))

	rec := call(t, h, http.MethodPost, "/api/v1/carts", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := cartView(t, rec).ID
	require.True(t, mr.Exists("cart:"+id))

	key := map[string]string{"Idempotency-Key": "add-pepper-1"}
	body := `{"productId":"` + ids["le-zhguchiy-perets"] + `"}`
	rec = call(t, h, http.MethodPost, "/api/v1/carts/"+id+"/items", body, key)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = call(t, h, http.MethodPost, "/api/v1/carts/"+id+"/items", body, key)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, http.MethodGet, "/api/v1/carts/"+id, "", nil)
	require.Equal(t, 1, cartView(t, rec).Count)
	require.NotEmpty(t, rec.Header().Get("X-Content-Type-Options"))

	rec = call(t, h, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"redis":"ok"`)

	rec = call(t, h, http.MethodDelete, "/api/v1/carts/"+id, "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.False(t, mr.Exists("cart:"+id))
}

func TestQuoteEndpointRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 2
	h := newApp(t, cfg).Router

	body := `{"items":[{"price":200},{"price":300},{"price":600}],"includeDelivery":true}`
	for i := 0; i < 2; i++ {
		rec := call(t, h, http.MethodPost, "/api/v1/pricing/quote", body, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Data pricing.QuoteResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, pricing.Money(1600), resp.Data.Total)
	}
	rec := call(t, h, http.MethodPost, "/api/v1/pricing/quote", body, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestNewRejectsUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"
	_, err := app.New(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
}
