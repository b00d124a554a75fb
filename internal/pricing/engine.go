package pricing

import (
	"errors"
	"fmt"
	"math"
)

// Money represents a monetary value in whole currency units.
type Money = int64

// ErrNegativePrice is returned by Compute when an item carries a negative price.
var ErrNegativePrice = errors.New("negative price")

// ErrTotalOverflow is returned when a total does not fit in Money.
var ErrTotalOverflow = errors.New("total overflows money range")

// Item is a single unit placed in the cart. Repeated products appear as repeated items.
type Item struct {
	Price Money
}

// Line is a quantity-based alternative to repeated items.
type Line struct {
	Price Money
	Qty   int
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal Money
	Delivery Money
	Discount Money
	Total    Money
	Units    int
}

// Rules holds the shop thresholds.
type Rules struct {
	DeliveryFee      Money
	FreeDeliveryFrom Money
	BulkDiscountFrom Money
}

// DefaultRules returns the storefront pricing rules.
func DefaultRules() Rules {
	return Rules{
		DeliveryFee:      500,
		FreeDeliveryFrom: 4999,
		BulkDiscountFrom: 10000,
	}
}

// Validate reports whether the rule set is usable.
func (r Rules) Validate() error {
	if r.DeliveryFee < 0 {
		return fmt.Errorf("delivery fee must not be negative: %d", r.DeliveryFee)
	}
	if r.FreeDeliveryFrom < 0 {
		return fmt.Errorf("free delivery threshold must not be negative: %d", r.FreeDeliveryFrom)
	}
	if r.BulkDiscountFrom < 0 {
		return fmt.Errorf("bulk discount threshold must not be negative: %d", r.BulkDiscountFrom)
	}
	return nil
}

type options struct {
	includeDelivery bool
}

// Option tweaks a single Compute call.
type Option func(*options)

// WithDelivery charges delivery when the cart is below the free delivery threshold.
func WithDelivery(include bool) Option {
	return func(o *options) {
		o.includeDelivery = include
	}
}

// Total returns the cart total using the default rules. Prices are not validated.
func Total(items []Item, includeDelivery bool) Money {
	return DefaultRules().summarize(items, includeDelivery).Total
}

// TotalOf returns the cart total without delivery.
func TotalOf(items []Item) Money {
	return Total(items, false)
}

// Compute validates items and returns the full breakdown using the default rules.
func Compute(items []Item, opts ...Option) (Summary, error) {
	return DefaultRules().Compute(items, opts...)
}

// Compute validates items and returns the full breakdown.
func (r Rules) Compute(items []Item, opts ...Option) (Summary, error) {
	o := collect(opts)
	var subtotal Money
	for i, it := range items {
		if it.Price < 0 {
			return Summary{}, fmt.Errorf("item %d: %w", i, ErrNegativePrice)
		}
		if subtotal > math.MaxInt64-it.Price {
			return Summary{}, fmt.Errorf("item %d: %w", i, ErrTotalOverflow)
		}
		subtotal += it.Price
	}
	var low Money
	if len(items) > 0 {
		low = cheapest(items)
	}
	return r.checked(subtotal, len(items), low, o.includeDelivery)
}

// ComputeLines prices quantity lines without expanding them into units. The
// discount still removes a single unit of the cheapest priced line.
func (r Rules) ComputeLines(lines []Line, opts ...Option) (Summary, error) {
	o := collect(opts)
	var (
		subtotal Money
		low      Money
		units    int
	)
	for i, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		if l.Price < 0 {
			return Summary{}, fmt.Errorf("line %d: %w", i, ErrNegativePrice)
		}
		if l.Price > 0 && Money(l.Qty) > math.MaxInt64/l.Price {
			return Summary{}, fmt.Errorf("line %d: %w", i, ErrTotalOverflow)
		}
		amount := l.Price * Money(l.Qty)
		if subtotal > math.MaxInt64-amount {
			return Summary{}, fmt.Errorf("line %d: %w", i, ErrTotalOverflow)
		}
		subtotal += amount
		if units == 0 || l.Price < low {
			low = l.Price
		}
		units += l.Qty
	}
	return r.checked(subtotal, units, low, o.includeDelivery)
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (r Rules) checked(subtotal Money, units int, low Money, includeDelivery bool) (Summary, error) {
	if includeDelivery && r.DeliveryFee > 0 && subtotal < r.FreeDeliveryFrom && subtotal > math.MaxInt64-r.DeliveryFee {
		return Summary{}, fmt.Errorf("delivery: %w", ErrTotalOverflow)
	}
	return r.finish(subtotal, units, low, includeDelivery), nil
}

// summarize is the unchecked path behind Total.
func (r Rules) summarize(items []Item, includeDelivery bool) Summary {
	var subtotal Money
	for _, it := range items {
		subtotal += it.Price
	}
	var low Money
	if len(items) > 0 {
		low = cheapest(items)
	}
	return r.finish(subtotal, len(items), low, includeDelivery)
}

// finish applies delivery before the discount check; low is the cheapest unit
// of the original list.
func (r Rules) finish(subtotal Money, units int, low Money, includeDelivery bool) Summary {
	total := subtotal

	var delivery Money
	if includeDelivery && total < r.FreeDeliveryFrom {
		delivery = r.DeliveryFee
		total += delivery
	}

	var discount Money
	if units > 0 && total >= r.BulkDiscountFrom {
		discount = low
		total -= discount
	}

	return Summary{
		Subtotal: subtotal,
		Delivery: delivery,
		Discount: discount,
		Total:    total,
		Units:    units,
	}
}

func cheapest(items []Item) Money {
	low := items[0].Price
	for _, it := range items[1:] {
		if it.Price < low {
			low = it.Price
		}
	}
	return low
}

// Expand converts quantity lines into one item per unit. Callers pricing
// large quantities should use ComputeLines instead.
func Expand(lines []Line) []Item {
	n := 0
	for _, l := range lines {
		if l.Qty > 0 {
			n += l.Qty
		}
	}
	items := make([]Item, 0, n)
	for _, l := range lines {
		for i := 0; i < l.Qty; i++ {
			items = append(items, Item{Price: l.Price})
		}
	}
	return items
}
