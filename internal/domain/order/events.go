package order

import (
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
)

const EventOrderPlaced = "OrderPlaced"

type OrderItem struct {
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	Variants    product.Selection `json:"variants"`
	Quantity    int               `json:"quantity"`
	LineTotal   int               `json:"line_total"`
}

type Pricing struct {
	Subtotal         int    `json:"subtotal"`
	QuantityDiscount int    `json:"quantity_discount"`
	PromoCode        string `json:"promo_code,omitempty"`
	PromoDiscount    int    `json:"promo_discount"`
	Shipping         int    `json:"shipping"`
	Total            int    `json:"total"`
}

// OrderPlaced carries no card details.
type OrderPlaced struct {
	OrderID        string         `json:"order_id"`
	UserID         string         `json:"user_id"`
	Items          []OrderItem    `json:"items"`
	ShippingInfo   ShippingInfo   `json:"shipping_info"`
	ShippingMethod ShippingMethod `json:"shipping_method"`
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	Pricing        Pricing        `json:"pricing"`
	PlacedAt       time.Time      `json:"placed_at"`
}
