package query

import (
	"context"
	"sort"
	"strings"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/inventory"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/promo"
)

type Handler struct {
	catalog   product.Catalog
	validator cart.PromoValidator
	cartSvc   *cart.Service
}

func NewHandler(catalog product.Catalog, validator cart.PromoValidator, cartSvc *cart.Service) *Handler {
	return &Handler{catalog: catalog, validator: validator, cartSvc: cartSvc}
}

// Products
func (h *Handler) ListProducts() []ProductListItem {
	products := h.catalog.ListProducts()
	items := make([]ProductListItem, 0, len(products))
	for _, p := range products {
		items = append(items, listItem(p))
	}
	return items
}

func (h *Handler) GetProduct(id string) (*ProductDetail, bool) {
	p, ok := h.catalog.GetProductByID(id)
	if !ok {
		return nil, false
	}
	return &ProductDetail{
		Product:      p,
		PriceDisplay: pricing.FormatPrice(p.BasePrice),
		Availability: VariantAvailability{
			Colors:    describeAll(p.Variants.Colors),
			Materials: describeAll(p.Variants.Materials),
			Sizes:     describeAll(p.Variants.Sizes),
		},
	}, true
}

func describeAll(variants []product.Variant) map[string]inventory.Availability {
	out := make(map[string]inventory.Availability, len(variants))
	for _, v := range variants {
		out[v.ID] = inventory.Describe(v.Stock)
	}
	return out
}

// ListCategories returns every category with its product count, sorted by
// name. Products without a category are not counted.
func (h *Handler) ListCategories() []CategoryResult {
	counts := h.catalog.CategoryCounts()
	out := make([]CategoryResult, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryResult{Name: name, ProductCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ProductsByCategory matches the category name case-insensitively.
func (h *Handler) ProductsByCategory(name string) ([]ProductListItem, bool) {
	var items []ProductListItem
	for _, p := range h.catalog.ListProducts() {
		if strings.EqualFold(p.Category, name) {
			items = append(items, listItem(p))
		}
	}
	return items, len(items) > 0
}

// SearchProducts does a case-insensitive substring match on name, brand and
// description. An empty query returns everything.
func (h *Handler) SearchProducts(q string) []ProductListItem {
	q = strings.ToLower(strings.TrimSpace(q))
	items := []ProductListItem{}
	for _, p := range h.catalog.ListProducts() {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			items = append(items, listItem(p))
		}
	}
	return items
}

// Quote prices a configuration. Unknown variant ids add nothing to the price
// and count as zero stock.
func (h *Handler) Quote(productID string, sel product.Selection, quantity int) (*QuoteResult, error) {
	p, ok := h.catalog.GetProductByID(productID)
	if !ok {
		return nil, product.ErrProductNotFound
	}
	if !pricing.ValidQuantity(quantity) {
		return nil, cart.ErrInvalidQuantity
	}
	q := pricing.QuoteProduct(p, sel, quantity)
	return &QuoteResult{
		ProductID:    p.ID,
		Selection:    sel,
		Quote:        q,
		PriceDisplay: pricing.FormatPrice(q.FinalPrice),
		Availability: inventory.Describe(p.MinStock(sel)),
	}, nil
}

func (h *Handler) CheckCompatibility(productID, variantID string, sel product.Selection) (*CompatibilityResult, error) {
	p, ok := h.catalog.GetProductByID(productID)
	if !ok {
		return nil, product.ErrProductNotFound
	}
	v, ok := p.FindVariant(variantID)
	if !ok {
		return nil, cart.ErrUnknownVariant
	}
	return &CompatibilityResult{
		VariantID:  v.ID,
		Compatible: product.CheckVariantCompatibility(v, sel),
	}, nil
}

func (h *Handler) Stock(stock int) inventory.Availability {
	return inventory.Describe(stock)
}

// Promo
func (h *Handler) ValidatePromo(ctx context.Context, code string, cartTotal int) promo.Result {
	return h.validator.Validate(ctx, code, cartTotal)
}

// Cart
func (h *Handler) GetCart(ctx context.Context, userID string) (cart.View, error) {
	return h.cartSvc.View(ctx, userID)
}

func (h *Handler) GetSaved(ctx context.Context, userID string) ([]cart.LineItem, error) {
	return h.cartSvc.Saved(ctx, userID)
}

func (h *Handler) RecentlyViewed(ctx context.Context, userID string) ([]ProductListItem, error) {
	products, err := h.cartSvc.RecentlyViewed(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]ProductListItem, 0, len(products))
	for _, p := range products {
		items = append(items, listItem(p))
	}
	return items, nil
}

func listItem(p *product.Product) ProductListItem {
	item := ProductListItem{
		ID:           p.ID,
		Name:         p.Name,
		BasePrice:    p.BasePrice,
		PriceDisplay: pricing.FormatPrice(p.BasePrice),
		Rating:       p.Rating,
		ReviewCount:  p.ReviewCount,
		Category:     p.Category,
		Brand:        p.Brand,
	}
	if len(p.Images) > 0 {
		item.Image = p.Images[0]
	}
	return item
}
