package cart

import (
	"context"

	"github.com/example/ec-storefront/internal/domain/inventory"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/promo"
)

// PromoValidator re-checks an applied code against the current cart.
type PromoValidator interface {
	Validate(ctx context.Context, code string, cartTotal int) promo.Result
}

type LineSummary struct {
	Key         string            `json:"key"`
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	Selection   product.Selection `json:"selection"`
	Image       string            `json:"image,omitempty"`
	pricing.Quote
}

// LowStockWarning is informational; it never blocks checkout.
type LowStockWarning struct {
	LineKey     string               `json:"line_key"`
	ProductName string               `json:"product_name"`
	Stock       int                  `json:"stock"`
	StockLevel  inventory.StockLevel `json:"stock_level"`
	Requested   int                  `json:"requested"`
}

type Summary struct {
	CartCount             int `json:"cart_count"`
	Subtotal              int `json:"subtotal"`
	QuantityDiscount      int `json:"quantity_discount"`
	AfterQuantityDiscount int `json:"after_quantity_discount"`

	PromoCode     string `json:"promo_code,omitempty"`
	PromoDiscount int    `json:"promo_discount"`
	PromoMessage  string `json:"promo_message,omitempty"`

	Total          int `json:"total"`
	UnclampedTotal int `json:"unclamped_total"`
	TotalSavings   int `json:"total_savings"`

	Lines        []LineSummary     `json:"lines"`
	LowStock     []LowStockWarning `json:"low_stock"`
	UnknownLines []string          `json:"unknown_lines,omitempty"`
}

// Summarize prices the cart. Each line gets the quantity tier of its own
// quantity. An applied promo is re-validated against the post-tier total, so
// a code that stopped qualifying contributes nothing and PromoMessage says
// why. With a nil validator the discount stored at apply time is used.
// Lines whose product is not in the catalog are left out of every amount
// except CartCount and listed in UnknownLines.
func Summarize(ctx context.Context, lines []LineItem, catalog product.Catalog, applied *AppliedPromo, validator PromoValidator) Summary {
	s := Summary{
		Lines:    []LineSummary{},
		LowStock: []LowStockWarning{},
	}

	for _, line := range lines {
		s.CartCount += line.Quantity

		p, ok := catalog.GetProductByID(line.ProductID)
		if !ok {
			s.UnknownLines = append(s.UnknownLines, line.Key)
			continue
		}

		quote := pricing.QuoteProduct(p, line.Selection, line.Quantity)
		s.Subtotal += quote.Subtotal
		s.QuantityDiscount += quote.Discount
		s.Lines = append(s.Lines, LineSummary{
			Key:         line.Key,
			ProductID:   p.ID,
			ProductName: p.Name,
			Selection:   line.Selection,
			Image:       line.Image,
			Quote:       quote,
		})

		if stock := p.MinStock(line.Selection); stock < line.Quantity {
			s.LowStock = append(s.LowStock, LowStockWarning{
				LineKey:     line.Key,
				ProductName: p.Name,
				Stock:       stock,
				StockLevel:  inventory.GetStockLevel(stock),
				Requested:   line.Quantity,
			})
		}
	}
	s.AfterQuantityDiscount = s.Subtotal - s.QuantityDiscount

	if applied != nil {
		s.PromoCode = applied.Code
		if validator == nil {
			s.PromoDiscount = applied.Discount
		} else {
			result := validator.Validate(ctx, applied.Code, s.AfterQuantityDiscount)
			if result.Valid {
				s.PromoDiscount = result.Discount
			}
			s.PromoMessage = result.Message
		}
	}

	s.UnclampedTotal = s.AfterQuantityDiscount - s.PromoDiscount
	s.Total = max(s.UnclampedTotal, 0)
	s.TotalSavings = s.QuantityDiscount + s.PromoDiscount
	return s
}
