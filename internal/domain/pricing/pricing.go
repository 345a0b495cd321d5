package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/example/ec-storefront/internal/domain/product"
)

// MaxLineQuantity is the most units one cart line or quote may carry.
const MaxLineQuantity = 999

// ValidQuantity reports whether quantity is within 1..MaxLineQuantity.
func ValidQuantity(quantity int) bool {
	return quantity > 0 && quantity <= MaxLineQuantity
}

// tier thresholds, highest first; tiers do not stack.
var quantityTiers = []struct {
	minQuantity int
	percent     int
}{
	{10, 15},
	{5, 10},
	{3, 5},
}

// Quote is the priced result for one configuration at a quantity.
type Quote struct {
	UnitPrice  int `json:"unit_price"`
	Quantity   int `json:"quantity"`
	Subtotal   int `json:"subtotal"`
	Percent    int `json:"discount_percent"`
	Discount   int `json:"discount"`
	FinalPrice int `json:"final_price"`
}

// UnitPrice is base price plus the color, material and size modifiers.
// An id that does not resolve on its axis contributes nothing. The result is
// not floored, so a catalog with large negative modifiers can price at or
// below zero.
func UnitPrice(p *product.Product, sel product.Selection) int {
	price := p.BasePrice
	if v, ok := p.FindColor(sel.Color); ok {
		price += v.PriceModifier
	}
	if v, ok := p.FindMaterial(sel.Material); ok {
		price += v.PriceModifier
	}
	if v, ok := p.FindSize(sel.Size); ok {
		price += v.PriceModifier
	}
	return price
}

// QuantityDiscountPercent maps a quantity to its tier: 0, 5, 10 or 15.
func QuantityDiscountPercent(quantity int) int {
	for _, tier := range quantityTiers {
		if quantity >= tier.minQuantity {
			return tier.percent
		}
	}
	return 0
}

// ApplyQuantityDiscount prices quantity units. The discount is rounded once on
// the line subtotal, never per unit. Callers bound quantity with
// ValidQuantity; the arithmetic is plain int.
func ApplyQuantityDiscount(unitPrice, quantity int) Quote {
	percent := QuantityDiscountPercent(quantity)
	subtotal := unitPrice * quantity
	discount := PercentOf(subtotal, decimal.NewFromInt(int64(percent)))
	return Quote{
		UnitPrice:  unitPrice,
		Quantity:   quantity,
		Subtotal:   subtotal,
		Percent:    percent,
		Discount:   discount,
		FinalPrice: subtotal - discount,
	}
}

// QuoteProduct composes UnitPrice and ApplyQuantityDiscount.
func QuoteProduct(p *product.Product, sel product.Selection, quantity int) Quote {
	return ApplyQuantityDiscount(UnitPrice(p, sel), quantity)
}

// CalculateProductPrice returns the discounted line price.
func CalculateProductPrice(p *product.Product, sel product.Selection, quantity int) int {
	return QuoteProduct(p, sel, quantity).FinalPrice
}
