package catalog

import "github.com/noah-isme/noskishop/internal/pricing"

// Product is a catalog entry that can be added to a cart.
type Product struct {
	ID    string        `json:"id"`
	Slug  string        `json:"slug"`
	Title string        `json:"title"`
	Price pricing.Money `json:"price"`
}

// Seed returns the storefront's built-in assortment.
func Seed() []Product {
	return []Product{
		{ID: "5b0c3c52-7f0e-4d43-9d8a-1c0f3f5f0a01", Slug: "le-kis-kis", Title: "Ле Кис-Кис", Price: 200},
		{ID: "5b0c3c52-7f0e-4d43-9d8a-1c0f3f5f0a02", Slug: "le-bratets-lis", Title: "Ле Братец лис", Price: 100},
		{ID: "5b0c3c52-7f0e-4d43-9d8a-1c0f3f5f0a03", Slug: "le-khokhloma", Title: "Ле Хохлома", Price: 300},
		{ID: "5b0c3c52-7f0e-4d43-9d8a-1c0f3f5f0a04", Slug: "le-zhguchiy-perets", Title: "Ле Жгучий перец", Price: 500},
	}
}
