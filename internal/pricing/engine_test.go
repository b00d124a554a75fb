package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func units(prices ...Money) []Item {
	items := make([]Item, 0, len(prices))
	for _, p := range prices {
		items = append(items, Item{Price: p})
	}
	return items
}

func repeat(price Money, n int) []Item {
	return Expand([]Line{{Price: price, Qty: n}})
}

func TestTotal(t *testing.T) {
	cases := []struct {
		name     string
		items    []Item
		delivery bool
		want     Money
	}{
		{name: "empty cart", items: nil, want: 0},
		{name: "empty cart with delivery", items: nil, delivery: true, want: 500},
		{name: "single item", items: units(200), want: 200},
		{name: "two identical items", items: units(200, 200), want: 400},
		{name: "three different items", items: units(200, 100, 300), want: 600},
		{name: "three different items with delivery", items: units(200, 100, 300), delivery: true, want: 1100},
		{name: "example set with delivery", items: units(200, 300, 600), delivery: true, want: 1600},
		{name: "eleven units over free delivery threshold", items: repeat(500, 11), delivery: true, want: 5500},
		{name: "just below free delivery threshold", items: units(4998), delivery: true, want: 5498},
		{name: "at free delivery threshold", items: units(4999), delivery: true, want: 4999},
		{name: "bulk discount without delivery", items: units(5000, 3000, 2000), want: 8000},
		{name: "just below bulk discount", items: units(5000, 4999), want: 9999},
		{name: "bulk discount subtracts one cheapest unit", items: repeat(1000, 12), want: 11000},
		{name: "delivery disabled ignores threshold", items: units(100), delivery: false, want: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Total(tc.items, tc.delivery))
		})
	}
}

func TestTotalOfDefaultsToNoDelivery(t *testing.T) {
	items := units(200, 300)
	require.Equal(t, Total(items, false), TotalOf(items))
	require.Equal(t, Money(500), TotalOf(items))
}

func TestDiscountBoundaryIncludesDelivery(t *testing.T) {
	// Rules with a free delivery threshold above the discount threshold so
	// the surcharge can lift the total onto the boundary.
	rules := Rules{DeliveryFee: 500, FreeDeliveryFrom: 20000, BulkDiscountFrom: 10000}
	summary, err := rules.Compute(units(9000, 500), WithDelivery(true))
	require.NoError(t, err)
	require.Equal(t, Money(9500), summary.Subtotal)
	require.Equal(t, Money(500), summary.Delivery)
	require.Equal(t, Money(500), summary.Discount)
	require.Equal(t, Money(9500), summary.Total)

	summary, err = rules.Compute(units(9000, 499), WithDelivery(true))
	require.NoError(t, err)
	require.Zero(t, summary.Discount)
	require.Equal(t, Money(9999), summary.Total)
}

func TestDiscountUsesPreDeliveryItems(t *testing.T) {
	rules := Rules{DeliveryFee: 700, FreeDeliveryFrom: 20000, BulkDiscountFrom: 10000}
	summary, err := rules.Compute(units(4500, 4000, 800), WithDelivery(true))
	require.NoError(t, err)
	require.Equal(t, Money(700), summary.Delivery)
	require.Equal(t, Money(800), summary.Discount)
	require.Equal(t, Money(9200), summary.Total)
}

func TestComputeBreakdown(t *testing.T) {
	summary, err := Compute(units(200, 100, 300), WithDelivery(true))
	require.NoError(t, err)
	require.Equal(t, Summary{Subtotal: 600, Delivery: 500, Discount: 0, Total: 1100, Units: 3}, summary)

	summary, err = Compute(units(6000, 4000, 1000))
	require.NoError(t, err)
	require.Equal(t, Money(11000), summary.Subtotal)
	require.Equal(t, Money(1000), summary.Discount)
	require.Equal(t, Money(10000), summary.Total)
}

func TestComputeRejectsNegativePrice(t *testing.T) {
	_, err := Compute(units(200, -1))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNegativePrice))
	require.Contains(t, err.Error(), "item 1")
}

func TestComputeDoesNotMutateItems(t *testing.T) {
	items := units(7000, 3000, 500)
	snapshot := append([]Item(nil), items...)
	_, err := Compute(items, WithDelivery(true))
	require.NoError(t, err)
	require.Equal(t, snapshot, items)
}

func TestExpand(t *testing.T) {
	items := Expand([]Line{{Price: 200, Qty: 2}, {Price: 300, Qty: 0}, {Price: 100, Qty: -3}, {Price: 50, Qty: 1}})
	require.Equal(t, units(200, 200, 50), items)
}

func TestRulesValidate(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())
	require.Error(t, Rules{DeliveryFee: -1}.Validate())
	require.Error(t, Rules{FreeDeliveryFrom: -1}.Validate())
	require.Error(t, Rules{BulkDiscountFrom: -1}.Validate())
}

func TestComputeRejectsOverflow(t *testing.T) {
	_, err := Compute(units(math.MaxInt64, 1))
	require.ErrorIs(t, err, ErrTotalOverflow)
	require.Contains(t, err.Error(), "item 1")

	rules := Rules{DeliveryFee: 500, FreeDeliveryFrom: math.MaxInt64, BulkDiscountFrom: math.MaxInt64}
	_, err = rules.Compute(units(math.MaxInt64-100), WithDelivery(true))
	require.ErrorIs(t, err, ErrTotalOverflow)

	summary, err := rules.Compute(units(math.MaxInt64 - 500), WithDelivery(true))
	require.NoError(t, err)
	require.Equal(t, Money(500), summary.Delivery)
	require.Equal(t, Money(500), summary.Total)
}

func TestComputeLinesMatchesExpandedUnits(t *testing.T) {
	sets := [][]Line{
		nil,
		{{Price: 200, Qty: 1}, {Price: 100, Qty: 1}, {Price: 300, Qty: 1}},
		{{Price: 500, Qty: 11}},
		{{Price: 1000, Qty: 12}},
		{{Price: 6000, Qty: 1}, {Price: 300, Qty: 0}, {Price: 2000, Qty: 2}},
		{{Price: 4500, Qty: 1}, {Price: 4000, Qty: 1}, {Price: 800, Qty: 1}, {Price: 50, Qty: -2}},
	}
	rulesets := []Rules{DefaultRules(), {DeliveryFee: 700, FreeDeliveryFrom: 20000, BulkDiscountFrom: 10000}}
	for _, rules := range rulesets {
		for _, lines := range sets {
			for _, delivery := range []bool{false, true} {
				want, err := rules.Compute(Expand(lines), WithDelivery(delivery))
				require.NoError(t, err)
				got, err := rules.ComputeLines(lines, WithDelivery(delivery))
				require.NoError(t, err)
				require.Equal(t, want, got, "lines=%v delivery=%v", lines, delivery)
			}
		}
	}
}

func TestComputeLinesLargeQuantities(t *testing.T) {
	lines := make([]Line, 1000)
	for i := range lines {
		lines[i] = Line{Price: 1, Qty: 10000}
	}
	summary, err := DefaultRules().ComputeLines(lines, WithDelivery(true))
	require.NoError(t, err)
	require.Equal(t, Summary{Subtotal: 10_000_000, Discount: 1, Total: 9_999_999, Units: 10_000_000}, summary)

	allocs := testing.AllocsPerRun(10, func() {
		_, _ = DefaultRules().ComputeLines(lines)
	})
	require.Less(t, allocs, float64(5))
}

func TestComputeLinesRejectsInvalidLines(t *testing.T) {
	_, err := DefaultRules().ComputeLines([]Line{{Price: math.MaxInt64/2 + 1, Qty: 2}})
	require.ErrorIs(t, err, ErrTotalOverflow)

	_, err = DefaultRules().ComputeLines([]Line{{Price: math.MaxInt64 - 1, Qty: 1}, {Price: 2, Qty: 1}})
	require.ErrorIs(t, err, ErrTotalOverflow)
	require.Contains(t, err.Error(), "line 1")

	_, err = DefaultRules().ComputeLines([]Line{{Price: 100, Qty: 1}, {Price: -5, Qty: 3}})
	require.ErrorIs(t, err, ErrNegativePrice)

	summary, err := DefaultRules().ComputeLines([]Line{{Price: 100, Qty: 1}, {Price: -5, Qty: 0}})
	require.NoError(t, err)
	require.Equal(t, Money(100), summary.Total)
}
