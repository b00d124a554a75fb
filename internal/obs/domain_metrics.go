package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics groups storefront collectors.
type DomainMetrics struct {
	CartsCreated    prometheus.Counter
	CartItems       *prometheus.CounterVec
	PriceQuotes     *prometheus.CounterVec
	BulkDiscounts   prometheus.Counter
	DeliveryCharged prometheus.Counter
	CartTotal       prometheus.Histogram
}

// NewDomainMetrics registers storefront collectors on reg, reusing collectors that are already registered.
func NewDomainMetrics(namespace string, reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &DomainMetrics{
		CartsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carts_created_total",
			Help:      "Number of carts created.",
		}),
		CartItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_total",
			Help:      "Cart unit mutations by action.",
		}, []string{"action"}),
		PriceQuotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_quotes_total",
			Help:      "Price computations by source and result.",
		}, []string{"source", "result"}),
		BulkDiscounts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_discounts_total",
			Help:      "Price computations that applied the bulk discount.",
		}),
		DeliveryCharged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_charged_total",
			Help:      "Price computations that charged delivery.",
		}),
		CartTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cart_total_value",
			Help:      "Distribution of computed cart totals in currency units.",
			Buckets:   []float64{0, 500, 1000, 2500, 4999, 7500, 10000, 20000, 50000},
		}),
	}

	mustRegisterCollector(reg, m.CartsCreated, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.CartsCreated = v
		}
	})
	mustRegisterCollector(reg, m.CartItems, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.CartItems = v
		}
	})
	mustRegisterCollector(reg, m.PriceQuotes, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.PriceQuotes = v
		}
	})
	mustRegisterCollector(reg, m.BulkDiscounts, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.BulkDiscounts = v
		}
	})
	mustRegisterCollector(reg, m.DeliveryCharged, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.DeliveryCharged = v
		}
	})
	mustRegisterCollector(reg, m.CartTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Histogram); ok {
			m.CartTotal = v
		}
	})
	return m
}

// ObservePrice records one price computation. A nil receiver is a no-op.
func (m *DomainMetrics) ObservePrice(source string, total, delivery, discount int64) {
	if m == nil {
		return
	}
	m.PriceQuotes.WithLabelValues(source, "ok").Inc()
	if delivery > 0 {
		m.DeliveryCharged.Inc()
	}
	if discount > 0 {
		m.BulkDiscounts.Inc()
	}
	m.CartTotal.Observe(float64(total))
}

// ObserveRejectedQuote counts a price computation rejected by validation.
func (m *DomainMetrics) ObserveRejectedQuote(source string) {
	if m == nil {
		return
	}
	m.PriceQuotes.WithLabelValues(source, "invalid").Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
