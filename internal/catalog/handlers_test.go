package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/noskishop/internal/catalog"
)

type listResponse struct {
	Data       []catalog.Product `json:"data"`
	Currency   string            `json:"currency"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalItems int `json:"total_items"`
	} `json:"pagination"`
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	repo, err := catalog.NewMemoryRepository(catalog.Seed())
	require.NoError(t, err)
	svc, err := catalog.NewService(catalog.ServiceConfig{Repository: repo})
	require.NoError(t, err)
	h := &catalog.Handler{Svc: svc, Currency: "RUB", DefaultLimit: 20, MaxLimit: 50}

	r := chi.NewRouter()
	r.Get("/api/v1/products", h.List)
	r.Get("/api/v1/products/{slug}", h.Get)
	return r
}

func TestCatalogHandlers(t *testing.T) {
	router := newRouter(t)

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "4", rec.Header().Get("X-Total-Count"))

		var resp listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 4)
		require.Equal(t, "RUB", resp.Currency)
		require.Equal(t, 4, resp.Pagination.TotalItems)
	})

	t.Run("list second page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?page=2&limit=3", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, "Ле Жгучий перец", resp.Data[0].Title)
	})

	t.Run("detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/le-kis-kis", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data catalog.Product `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.EqualValues(t, 200, resp.Data.Price)
	})

	t.Run("detail not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/nope", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
