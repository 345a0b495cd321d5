package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/product"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrUnknownList  = errors.New("unknown list")
)

// List names one of a shopper's line-item collections.
type List string

const (
	ListCart  List = "cart"
	ListSaved List = "saved"
)

func (l List) Valid() bool {
	return l == ListCart || l == ListSaved
}

// LineItem is a persisted cart or saved-for-later line.
type LineItem struct {
	Key       string            `json:"key"`
	ProductID string            `json:"product_id"`
	Selection product.Selection `json:"selection"`
	Quantity  int               `json:"quantity"`
	AddedAt   time.Time         `json:"added_at"`
	Image     string            `json:"image,omitempty"`
}

// AppliedPromo is the code a shopper applied and the discount computed then.
type AppliedPromo struct {
	Code     string `json:"code"`
	Discount int    `json:"discount"`
}

// CartStore is durable per-shopper cart state. Items are upserted by Key.
type CartStore interface {
	GetItems(ctx context.Context, userID string, list List) ([]LineItem, error)
	PutItem(ctx context.Context, userID string, list List, item LineItem) error
	DeleteItem(ctx context.Context, userID string, list List, key string) error
	// ClearCart drops the cart lines and the applied promo as one operation.
	// Saved lines and recently viewed stay.
	ClearCart(ctx context.Context, userID string) error

	// MoveItem removes key from one list and stores item in the other as one
	// operation.
	MoveItem(ctx context.Context, userID string, from, to List, item LineItem) error

	GetRecentlyViewed(ctx context.Context, userID string) ([]string, error)
	SetRecentlyViewed(ctx context.Context, userID string, productIDs []string) error

	// GetAppliedPromo returns nil when no promo is applied.
	GetAppliedPromo(ctx context.Context, userID string) (*AppliedPromo, error)
	// SetAppliedPromo with nil clears the promo.
	SetAppliedPromo(ctx context.Context, userID string, promo *AppliedPromo) error

	Close() error
}

// SortItems orders lines oldest first, ties broken by key. Every backend
// returns lines in this order.
func SortItems(items []LineItem) {
	slices.SortStableFunc(items, func(a, b LineItem) int {
		if c := a.AddedAt.Compare(b.AddedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
}
