package cart

import (
	"time"

	"github.com/noah-isme/noskishop/internal/pricing"
)

// Unit is one product unit placed in a cart. Adding the same product twice
// stores two units.
type Unit struct {
	ProductID string        `json:"productId"`
	Title     string        `json:"title"`
	Price     pricing.Money `json:"price"`
}

// Cart is a shopper session cart.
type Cart struct {
	ID        string    `json:"id"`
	Units     []Unit    `json:"units"`
	Delivery  bool      `json:"includeDelivery"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Count is the badge number: units in the cart.
func (c Cart) Count() int {
	return len(c.Units)
}

// Items snapshots the units for the pricing engine.
func (c Cart) Items() []pricing.Item {
	items := make([]pricing.Item, 0, len(c.Units))
	for _, u := range c.Units {
		items = append(items, pricing.Item{Price: u.Price})
	}
	return items
}

// Line groups units of one product at one price.
type Line struct {
	ProductID string        `json:"productId"`
	Title     string        `json:"title"`
	Price     pricing.Money `json:"price"`
	Qty       int           `json:"qty"`
	Subtotal  pricing.Money `json:"subtotal"`
}

// Lines groups units in first-added order.
func (c Cart) Lines() []Line {
	type key struct {
		productID string
		price     pricing.Money
	}
	index := make(map[key]int, len(c.Units))
	lines := make([]Line, 0, len(c.Units))
	for _, u := range c.Units {
		k := key{productID: u.ProductID, price: u.Price}
		if i, ok := index[k]; ok {
			lines[i].Qty++
			lines[i].Subtotal += u.Price
			continue
		}
		index[k] = len(lines)
		lines = append(lines, Line{ProductID: u.ProductID, Title: u.Title, Price: u.Price, Qty: 1, Subtotal: u.Price})
	}
	return lines
}

// Pricing is the JSON form of a pricing summary.
type Pricing struct {
	Subtotal pricing.Money `json:"subtotal"`
	Delivery pricing.Money `json:"delivery"`
	Discount pricing.Money `json:"discount"`
	Total    pricing.Money `json:"total"`
}

// View is what the storefront renders for a cart.
type View struct {
	ID              string    `json:"id"`
	Count           int       `json:"count"`
	Lines           []Line    `json:"items"`
	IncludeDelivery bool      `json:"includeDelivery"`
	Pricing         Pricing   `json:"pricing"`
	Currency        string    `json:"currency,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// BuildView prices the cart with rules and assembles its view.
func BuildView(c Cart, rules pricing.Rules) (View, error) {
	summary, err := rules.Compute(c.Items(), pricing.WithDelivery(c.Delivery))
	if err != nil {
		return View{}, err
	}
	return View{
		ID:              c.ID,
		Count:           c.Count(),
		Lines:           c.Lines(),
		IncludeDelivery: c.Delivery,
		Pricing: Pricing{
			Subtotal: summary.Subtotal,
			Delivery: summary.Delivery,
			Discount: summary.Discount,
			Total:    summary.Total,
		},
		ExpiresAt: c.ExpiresAt,
	}, nil
}

// removeOne drops the most recently added unit of productID.
func (c *Cart) removeOne(productID string) bool {
	for i := len(c.Units) - 1; i >= 0; i-- {
		if c.Units[i].ProductID == productID {
			c.Units = append(c.Units[:i], c.Units[i+1:]...)
			return true
		}
	}
	return false
}

func (c Cart) clone() Cart {
	out := c
	out.Units = append([]Unit(nil), c.Units...)
	return out
}
