package query

import (
	"github.com/example/ec-storefront/internal/domain/inventory"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/example/ec-storefront/internal/domain/product"
)

type ProductListItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	BasePrice    int     `json:"base_price"`
	PriceDisplay string  `json:"price_display"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
	Category     string  `json:"category,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	Image        string  `json:"image,omitempty"`
}

// VariantAvailability is keyed by variant id within each axis; ids only need
// to be unique on their own axis.
type VariantAvailability struct {
	Colors    map[string]inventory.Availability `json:"colors"`
	Materials map[string]inventory.Availability `json:"materials"`
	Sizes     map[string]inventory.Availability `json:"sizes"`
}

type ProductDetail struct {
	*product.Product
	PriceDisplay string              `json:"price_display"`
	Availability VariantAvailability `json:"availability"`
}

type QuoteResult struct {
	ProductID    string                 `json:"product_id"`
	Selection    product.Selection      `json:"selection"`
	Quote        pricing.Quote          `json:"quote"`
	PriceDisplay string                 `json:"price_display"`
	Availability inventory.Availability `json:"availability"`
}

type CompatibilityResult struct {
	VariantID  string `json:"variant_id"`
	Compatible bool   `json:"compatible"`
}

type CategoryResult struct {
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
}
