package cart

import (
	"strings"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

type (
	LineItem     = store.LineItem
	AppliedPromo = store.AppliedPromo
)

const keySeparator = "|"

// LineKey identifies a configuration in the cart. Adding the same
// configuration again increments the existing line.
func LineKey(productID string, sel product.Selection) string {
	return strings.Join([]string{productID, sel.Color, sel.Material, sel.Size}, keySeparator)
}

// lineImage prefers the selected color's image over the product's first one.
func lineImage(p *product.Product, sel product.Selection) string {
	if v, ok := p.FindColor(sel.Color); ok && v.Image != "" {
		return v.Image
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

func findLine(items []LineItem, key string) int {
	for i := range items {
		if items[i].Key == key {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	return append([]LineItem(nil), items...)
}
