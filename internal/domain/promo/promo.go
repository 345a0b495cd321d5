package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPromoNotFound       = errors.New("promo code not found")
	ErrInvalidCode         = errors.New("promo code is required")
	ErrInvalidDiscountType = errors.New("discount type must be percentage or fixed")
	ErrInvalidValue        = errors.New("discount value must be positive")
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// DateLayout is the layout of ValidUntil in seed files and API payloads.
const DateLayout = "2006-01-02"

// PromoCode is a registry entry. ValidUntil is a calendar date; the code is
// usable through the whole of that day.
type PromoCode struct {
	Code         string          `json:"code"`
	DiscountType DiscountType    `json:"discount_type"`
	Value        decimal.Decimal `json:"discount_value"`
	MinPurchase  int             `json:"min_purchase,omitempty"`
	ValidUntil   time.Time       `json:"valid_until"`
}

func (p PromoCode) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return ErrInvalidCode
	}
	if p.DiscountType != DiscountPercentage && p.DiscountType != DiscountFixed {
		return ErrInvalidDiscountType
	}
	if !p.Value.IsPositive() {
		return ErrInvalidValue
	}
	if p.DiscountType == DiscountPercentage && p.Value.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidValue
	}
	return nil
}

// Registry resolves codes case-insensitively. Implementations return
// ErrPromoNotFound for unknown codes.
type Registry interface {
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
}

// normalizeCode is the lookup key used by every registry.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
