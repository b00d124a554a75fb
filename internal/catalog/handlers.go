package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/noskishop/internal/common"
	"github.com/noah-isme/noskishop/internal/resilience"
)

var classifiers = []common.Classifier{
	common.Sentinel(ErrNotFound, http.StatusNotFound, "NOT_FOUND"),
	common.Sentinel(resilience.ErrOpenCircuit, http.StatusServiceUnavailable, "UNAVAILABLE"),
}

// Handler exposes catalog endpoints.
type Handler struct {
	Svc          *Service
	Currency     string
	DefaultLimit int
	MaxLimit     int
}

// List returns a page of products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	products, err := h.Svc.List(r.Context())
	if err != nil {
		common.WriteError(w, r, err, classifiers...)
		return
	}
	defaultLimit := h.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	page, perPage := common.ParsePagination(r, defaultLimit, h.MaxLimit)
	pagination := common.Pagination{Page: page, PerPage: perPage, TotalItems: len(products)}
	start, end := pagination.Window()

	w.Header().Set("X-Total-Count", strconv.Itoa(len(products)))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       products[start:end],
		"pagination": pagination,
		"currency":   h.Currency,
	})
}

// Get returns a single product by slug.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	product, err := h.Svc.BySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.WriteError(w, r, err, classifiers...)
		return
	}
	common.Data(w, http.StatusOK, product)
}
