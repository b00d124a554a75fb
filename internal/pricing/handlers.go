package pricing

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/noskishop/internal/common"
	"github.com/noah-isme/noskishop/internal/events"
)

var quoteClassifiers = []common.Classifier{
	common.Sentinel(ErrNegativePrice, http.StatusUnprocessableEntity, "INVALID_PRICE"),
	common.Sentinel(ErrTotalOverflow, http.StatusUnprocessableEntity, "TOTAL_OVERFLOW"),
}

// QuoteHandler prices an ad-hoc item list without a cart. A nil Rules
// prices with DefaultRules.
type QuoteHandler struct {
	Rules    *Rules
	Events   *events.Bus
	Currency string
	Logger   *zerolog.Logger
}

type quoteLine struct {
	Price *Money `json:"price" validate:"required,gte=0,lte=1000000000"`
	Qty   *int   `json:"qty" validate:"omitempty,gte=1,lte=10000"`
}

type quoteRequest struct {
	Items           []quoteLine `json:"items" validate:"max=1000,dive"`
	IncludeDelivery bool        `json:"includeDelivery"`
}

// QuoteResponse is the priced breakdown returned to clients.
type QuoteResponse struct {
	Subtotal        Money  `json:"subtotal"`
	Delivery        Money  `json:"delivery"`
	Discount        Money  `json:"discount"`
	Total           Money  `json:"total"`
	Units           int    `json:"units"`
	IncludeDelivery bool   `json:"includeDelivery"`
	Currency        string `json:"currency,omitempty"`
}

// Quote handles POST /pricing/quote.
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.reject(w, r, err)
		return
	}
	if err := common.ValidateStruct(req); err != nil {
		h.reject(w, r, err)
		return
	}

	lines := make([]Line, 0, len(req.Items))
	for _, it := range req.Items {
		qty := 1
		if it.Qty != nil {
			qty = *it.Qty
		}
		lines = append(lines, Line{Price: *it.Price, Qty: qty})
	}
	summary, err := h.rules().ComputeLines(lines, WithDelivery(req.IncludeDelivery))
	if err != nil {
		h.reject(w, r, err)
		return
	}
	h.emit(r.Context(), events.TopicQuoteComputed, map[string]any{
		"total":    summary.Total,
		"delivery": summary.Delivery,
		"discount": summary.Discount,
		"units":    summary.Units,
	})
	common.Data(w, http.StatusOK, QuoteResponse{
		Subtotal:        summary.Subtotal,
		Delivery:        summary.Delivery,
		Discount:        summary.Discount,
		Total:           summary.Total,
		Units:           summary.Units,
		IncludeDelivery: req.IncludeDelivery,
		Currency:        h.Currency,
	})
}

func (h *QuoteHandler) rules() Rules {
	if h.Rules == nil {
		return DefaultRules()
	}
	return *h.Rules
}

func (h *QuoteHandler) reject(w http.ResponseWriter, r *http.Request, err error) {
	h.emit(r.Context(), events.TopicQuoteRejected, map[string]any{"reason": err.Error()})
	common.WriteError(w, r, err, quoteClassifiers...)
}

func (h *QuoteHandler) emit(ctx context.Context, topic string, payload map[string]any) {
	if _, err := h.Events.Emit(ctx, topic, "", payload); err != nil && h.Logger != nil {
		h.Logger.Warn().Err(err).Str("topic", topic).Msg("quote event delivery failed")
	}
}
