package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/noskishop/internal/obs"
)

// LogNotifier writes every event to a zerolog logger at debug level.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Debug().
		Str("event_id", event.ID).
		Str("topic", event.Topic).
		Str("cart_id", event.CartID).
		Fields(event.Payload).
		Msg("domain_event")
	return nil
}

// MetricsNotifier translates events into Prometheus observations.
type MetricsNotifier struct {
	Metrics *obs.DomainMetrics
}

// Notify implements Notifier.
func (n MetricsNotifier) Notify(_ context.Context, event Event) error {
	m := n.Metrics
	if m == nil {
		return nil
	}
	switch event.Topic {
	case TopicCartCreated:
		m.CartsCreated.Inc()
	case TopicItemAdded:
		m.CartItems.WithLabelValues("added").Inc()
	case TopicItemRemoved:
		m.CartItems.WithLabelValues("removed").Inc()
	case TopicCartPriced:
		m.ObservePrice("cart", int64Field(event.Payload, "total"), int64Field(event.Payload, "delivery"), int64Field(event.Payload, "discount"))
	case TopicQuoteComputed:
		m.ObservePrice("quote", int64Field(event.Payload, "total"), int64Field(event.Payload, "delivery"), int64Field(event.Payload, "discount"))
	case TopicQuoteRejected:
		m.ObserveRejectedQuote("quote")
	}
	return nil
}

func int64Field(payload map[string]any, key string) int64 {
	switch v := payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
