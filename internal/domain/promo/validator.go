package promo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/domain/pricing"
)

const (
	MsgInvalidCode = "Invalid promo code"
	MsgExpired     = "Promo code has expired"
	MsgUnavailable = "Unable to verify promo code"
)

// Result is the outcome of a validation. Failures are reported here, never
// as errors.
type Result struct {
	Valid    bool   `json:"valid"`
	Code     string `json:"code,omitempty"`
	Discount int    `json:"discount"`
	Message  string `json:"message"`
}

type Validator struct {
	registry Registry
	now      func() time.Time
	location *time.Location
	logger   *zap.Logger
}

type Option func(*Validator)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithLocation sets the zone in which expiry dates are interpreted (UTC by default).
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) { v.location = loc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

func NewValidator(registry Registry, opts ...Option) *Validator {
	v := &Validator{
		registry: registry,
		now:      time.Now,
		location: time.UTC,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks code against cartTotal, the cart total after quantity
// discounts, and computes the discount it would grant.
func (v *Validator) Validate(ctx context.Context, code string, cartTotal int) Result {
	p, err := v.registry.FindByCode(ctx, code)
	if errors.Is(err, ErrPromoNotFound) {
		return Result{Message: MsgInvalidCode}
	}
	if err != nil {
		v.logger.Error("promo lookup failed", zap.String("code", code), zap.Error(err))
		return Result{Message: MsgUnavailable}
	}

	if v.expired(p.ValidUntil) {
		return Result{Code: p.Code, Message: MsgExpired}
	}

	if p.MinPurchase > 0 && cartTotal < p.MinPurchase {
		return Result{
			Code:    p.Code,
			Message: fmt.Sprintf("Minimum purchase of %s required", pricing.FormatPrice(p.MinPurchase)),
		}
	}

	discount := Discount(*p, cartTotal)
	return Result{
		Valid:    true,
		Code:     p.Code,
		Discount: discount,
		Message:  fmt.Sprintf("Promo code applied! You saved %s", pricing.FormatPrice(discount)),
	}
}

// Discount computes the amount p takes off cartTotal. Fixed discounts are
// not capped by the total.
func Discount(p PromoCode, cartTotal int) int {
	if p.DiscountType == DiscountFixed {
		return int(p.Value.Round(0).IntPart())
	}
	return pricing.PercentOf(cartTotal, p.Value)
}

// expired is true once the current calendar day is past validUntil's day.
func (v *Validator) expired(validUntil time.Time) bool {
	now := v.now().In(v.location)
	y, m, d := validUntil.Date()
	endOfDay := time.Date(y, m, d, 0, 0, 0, 0, v.location).AddDate(0, 0, 1)
	return !now.Before(endOfDay)
}
