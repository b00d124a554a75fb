package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/noskishop/internal/common"
	"github.com/noah-isme/noskishop/internal/pricing"
	"github.com/noah-isme/noskishop/internal/resilience"
)

// Handler wires cart services to HTTP.
type Handler struct {
	Svc      *Service
	Currency string
}

var errorClassifiers = []common.Classifier{
	common.Sentinel(ErrNotFound, http.StatusNotFound, "NOT_FOUND"),
	common.Sentinel(ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"),
	common.Sentinel(pricing.ErrNegativePrice, http.StatusUnprocessableEntity, "INVALID_PRICE"),
	common.Sentinel(resilience.ErrOpenCircuit, http.StatusServiceUnavailable, "UNAVAILABLE"),
}

// Create opens a new cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	c, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusCreated, c)
}

// Get returns cart contents, badge count and pricing.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, c)
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// AddItem places one unit of a product into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	var req addItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := common.ValidateStruct(req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), req.ProductID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, c)
}

// RemoveItem takes one unit of a product out of the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	c, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, c)
}

type deliveryRequest struct {
	IncludeDelivery *bool `json:"includeDelivery" validate:"required"`
}

// SetDelivery toggles the delivery option.
func (h *Handler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	var req deliveryRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := common.ValidateStruct(req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.Svc.SetDelivery(r.Context(), chi.URLParam(r, "id"), *req.IncludeDelivery)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, c)
}

// Delete discards the cart.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c Cart) {
	view, err := h.Svc.View(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view.Currency = h.Currency
	common.Data(w, status, view)
}

func (h *Handler) configured(w http.ResponseWriter) bool {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	common.WriteError(w, r, err, errorClassifiers...)
}
