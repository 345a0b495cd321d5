package command

import (
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
)

// Cart Commands
type AddToCart struct {
	UserID    string            `json:"user_id"`
	ProductID string            `json:"product_id"`
	Selection product.Selection `json:"selection"`
	Quantity  int               `json:"quantity"`
}

type UpdateCartItem struct {
	UserID   string `json:"user_id"`
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

type RemoveFromCart struct {
	UserID string `json:"user_id"`
	Key    string `json:"key"`
}

type ClearCart struct {
	UserID string `json:"user_id"`
}

// Saved For Later Commands
type SaveForLater struct {
	UserID string `json:"user_id"`
	Key    string `json:"key"`
}

type MoveToCart struct {
	UserID string `json:"user_id"`
	Key    string `json:"key"`
}

type RemoveSaved struct {
	UserID string `json:"user_id"`
	Key    string `json:"key"`
}

// Promo Commands
type ApplyPromo struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

type RemovePromo struct {
	UserID string `json:"user_id"`
}

type RecordView struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

// Order Commands
type PlaceOrder struct {
	UserID string     `json:"user_id"`
	Form   order.Form `json:"form"`
}
