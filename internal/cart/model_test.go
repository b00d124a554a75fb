package cart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/noskishop/internal/pricing"
)

func TestLinesGroupInFirstAddedOrder(t *testing.T) {
	c := Cart{Units: []Unit{
		{ProductID: "kis", Title: "Ле Кис-Кис", Price: 200},
		{ProductID: "lis", Title: "Ле Братец лис", Price: 100},
		{ProductID: "kis", Title: "Ле Кис-Кис", Price: 200},
	}}

	require.Equal(t, 3, c.Count())
	require.Equal(t, []Line{
		{ProductID: "kis", Title: "Ле Кис-Кис", Price: 200, Qty: 2, Subtotal: 400},
		{ProductID: "lis", Title: "Ле Братец лис", Price: 100, Qty: 1, Subtotal: 100},
	}, c.Lines())
}

func TestLinesSplitRepricedProduct(t *testing.T) {
	c := Cart{Units: []Unit{
		{ProductID: "kis", Price: 200},
		{ProductID: "kis", Price: 250},
	}}
	lines := c.Lines()
	require.Len(t, lines, 2)
	require.Equal(t, pricing.Money(250), lines[1].Price)
}

func TestRemoveOneDropsLatestUnit(t *testing.T) {
	c := Cart{Units: []Unit{
		{ProductID: "kis", Price: 200},
		{ProductID: "lis", Price: 100},
		{ProductID: "kis", Price: 250},
	}}
	require.True(t, c.removeOne("kis"))
	require.Equal(t, []Unit{{ProductID: "kis", Price: 200}, {ProductID: "lis", Price: 100}}, c.Units)
	require.False(t, c.removeOne("pepper"))
}

func TestBuildView(t *testing.T) {
	c := Cart{ID: "c-1", Delivery: true, Units: []Unit{
		{ProductID: "kis", Price: 200},
		{ProductID: "lis", Price: 100},
		{ProductID: "hoh", Price: 300},
	}}
	view, err := BuildView(c, pricing.DefaultRules())
	require.NoError(t, err)
	require.Equal(t, 3, view.Count)
	require.True(t, view.IncludeDelivery)
	require.Equal(t, Pricing{Subtotal: 600, Delivery: 500, Total: 1100}, view.Pricing)

	peppers := Cart{Delivery: true}
	for i := 0; i < 11; i++ {
		peppers.Units = append(peppers.Units, Unit{ProductID: "pepper", Price: 500})
	}
	view, err = BuildView(peppers, pricing.DefaultRules())
	require.NoError(t, err)
	require.Equal(t, 11, view.Count)
	require.Equal(t, pricing.Money(5500), view.Pricing.Total)
	require.Zero(t, view.Pricing.Delivery)
	require.Len(t, view.Lines, 1)
	require.Equal(t, 11, view.Lines[0].Qty)
}

func TestBuildViewRejectsNegativePrice(t *testing.T) {
	_, err := BuildView(Cart{Units: []Unit{{Price: -1}}}, pricing.DefaultRules())
	require.True(t, errors.Is(err, pricing.ErrNegativePrice))
}

func TestCloneDetachesUnits(t *testing.T) {
	c := Cart{Units: []Unit{{ProductID: "kis"}}}
	cp := c.clone()
	cp.Units[0].ProductID = "lis"
	require.Equal(t, "kis", c.Units[0].ProductID)
}
