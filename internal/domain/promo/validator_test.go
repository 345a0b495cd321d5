package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mid-January 2026: every seed code is still live
var fixedNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

func newTestValidator(t *testing.T, now time.Time, extra ...PromoCode) *Validator {
	t.Helper()
	codes, err := SeedPromoCodes()
	require.NoError(t, err)
	registry, err := NewStaticRegistry(append(codes, extra...))
	require.NoError(t, err)
	return NewValidator(registry, WithClock(func() time.Time { return now }))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type failingRegistry struct{}

func (failingRegistry) FindByCode(context.Context, string) (*PromoCode, error) {
	return nil, errors.New("connection refused")
}

// ============================================
// Lookup Tests
// ============================================

func TestValidator_UnknownCode(t *testing.T) {
	v := newTestValidator(t, fixedNow)

	res := v.Validate(context.Background(), "NOPE", 100000)

	assert.Equal(t, Result{Message: "Invalid promo code"}, res)
}

func TestValidator_CaseInsensitive(t *testing.T) {
	v := newTestValidator(t, fixedNow)
	ctx := context.Background()

	expected := v.Validate(ctx, "WELCOME10", 8000)
	require.True(t, expected.Valid)

	for _, code := range []string{"welcome10", "WeLcOmE10", "  WELCOME10 "} {
		assert.Equal(t, expected, v.Validate(ctx, code, 8000), code)
	}
}

func TestValidator_RegistryFailure(t *testing.T) {
	v := NewValidator(failingRegistry{})

	res := v.Validate(context.Background(), "WELCOME10", 10000)

	assert.False(t, res.Valid)
	assert.Equal(t, 0, res.Discount)
	assert.Equal(t, MsgUnavailable, res.Message)
}

// ============================================
// Minimum Purchase Tests
// ============================================

func TestValidator_MinimumPurchase(t *testing.T) {
	v := newTestValidator(t, fixedNow)
	ctx := context.Background()

	res := v.Validate(ctx, "WELCOME10", 5000)
	assert.True(t, res.Valid)
	assert.Equal(t, 500, res.Discount)
	assert.Equal(t, "Promo code applied! You saved ৳500", res.Message)

	res = v.Validate(ctx, "WELCOME10", 4999)
	assert.False(t, res.Valid)
	assert.Equal(t, 0, res.Discount)
	assert.Equal(t, "Minimum purchase of ৳5,000 required", res.Message)
}

func TestValidator_NoMinimum(t *testing.T) {
	v := newTestValidator(t, fixedNow, PromoCode{
		Code: "ANY5", DiscountType: DiscountPercentage, Value: decimal.NewFromInt(5), ValidUntil: date(2026, 12, 31),
	})

	res := v.Validate(context.Background(), "ANY5", 100)

	assert.True(t, res.Valid)
	assert.Equal(t, 5, res.Discount)
}

// ============================================
// Discount Computation Tests
// ============================================

func TestValidator_FixedDiscount(t *testing.T) {
	v := newTestValidator(t, fixedNow)
	ctx := context.Background()

	for _, total := range []int{10000, 15000, 1000000} {
		res := v.Validate(ctx, "SAVE500", total)
		assert.True(t, res.Valid)
		assert.Equal(t, 500, res.Discount, "total=%d", total)
	}
}

func TestValidator_FixedDiscountNotCapped(t *testing.T) {
	v := newTestValidator(t, fixedNow, PromoCode{
		Code: "BIGFIXED", DiscountType: DiscountFixed, Value: decimal.NewFromInt(1000), ValidUntil: date(2026, 12, 31),
	})

	res := v.Validate(context.Background(), "BIGFIXED", 600)

	assert.True(t, res.Valid)
	assert.Equal(t, 1000, res.Discount)
}

func TestValidator_PercentageDiscount(t *testing.T) {
	v := newTestValidator(t, fixedNow)
	ctx := context.Background()

	tests := []struct {
		code     string
		total    int
		expected int
	}{
		{"MEGA25", 30000, 7500},
		{"MEGA25", 100000, 25000},
		{"WELCOME10", 71995, 7200},
		{"WELCOME10", 5005, 501},
	}

	for _, tt := range tests {
		res := v.Validate(ctx, tt.code, tt.total)
		assert.True(t, res.Valid)
		assert.Equal(t, tt.expected, res.Discount, "%s on %d", tt.code, tt.total)
	}
}

func TestValidator_SuccessMessageFormatsThousands(t *testing.T) {
	v := newTestValidator(t, fixedNow)

	res := v.Validate(context.Background(), "MEGA25", 100000)

	assert.Equal(t, "Promo code applied! You saved ৳25,000", res.Message)
}

// ============================================
// Expiry Tests
// ============================================

func TestValidator_Expired(t *testing.T) {
	yesterday := fixedNow.AddDate(0, 0, -1)
	v := newTestValidator(t, fixedNow, PromoCode{
		Code: "OLD", DiscountType: DiscountFixed, Value: decimal.NewFromInt(100), ValidUntil: date(yesterday.Date()),
	})

	res := v.Validate(context.Background(), "OLD", 100000)

	assert.False(t, res.Valid)
	assert.Equal(t, 0, res.Discount)
	assert.Equal(t, "Promo code has expired", res.Message)
}

func TestValidator_ExpiryDayBoundary(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		now   time.Time
		valid bool
	}{
		{"start of expiry day", time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), true},
		{"last second of expiry day", time.Date(2026, 2, 15, 23, 59, 59, 0, time.UTC), true},
		{"day after expiry", time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(t, tt.now)
			res := v.Validate(ctx, "FLASH1000", 20000)
			assert.Equal(t, tt.valid, res.Valid)
		})
	}
}

func TestValidator_ExpiryCheckedBeforeMinimum(t *testing.T) {
	v := newTestValidator(t, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))

	res := v.Validate(context.Background(), "SAVE500", 1)

	assert.Equal(t, MsgExpired, res.Message)
}

func TestValidator_Location(t *testing.T) {
	dhaka := time.FixedZone("BDT", 6*60*60)
	// 2026-02-15 20:00 UTC is already the 16th in Dhaka
	now := time.Date(2026, 2, 15, 20, 0, 0, 0, time.UTC)
	codes, err := SeedPromoCodes()
	require.NoError(t, err)
	registry, err := NewStaticRegistry(codes)
	require.NoError(t, err)

	utc := NewValidator(registry, WithClock(func() time.Time { return now }))
	local := NewValidator(registry, WithClock(func() time.Time { return now }), WithLocation(dhaka))

	assert.True(t, utc.Validate(context.Background(), "FLASH1000", 20000).Valid)
	assert.False(t, local.Validate(context.Background(), "FLASH1000", 20000).Valid)
}

// ============================================
// Registry Tests
// ============================================

func TestSeedPromoCodes(t *testing.T) {
	codes, err := SeedPromoCodes()
	require.NoError(t, err)
	require.Len(t, codes, 4)

	assert.Equal(t, "WELCOME10", codes[0].Code)
	assert.Equal(t, DiscountPercentage, codes[0].DiscountType)
	assert.True(t, decimal.NewFromInt(10).Equal(codes[0].Value))
	assert.Equal(t, 5000, codes[0].MinPurchase)
	assert.Equal(t, date(2026, 12, 31), codes[0].ValidUntil)
}

func TestStaticRegistry_IsolatedInstances(t *testing.T) {
	a, err := NewStaticRegistry([]PromoCode{{Code: "A", DiscountType: DiscountFixed, Value: decimal.NewFromInt(1), ValidUntil: date(2030, 1, 1)}})
	require.NoError(t, err)
	b, err := NewStaticRegistry(nil)
	require.NoError(t, err)

	_, err = a.FindByCode(context.Background(), "a")
	assert.NoError(t, err)
	_, err = b.FindByCode(context.Background(), "a")
	assert.ErrorIs(t, err, ErrPromoNotFound)
}

func TestStaticRegistry_RejectsInvalidCodes(t *testing.T) {
	tests := []struct {
		name string
		code PromoCode
		err  error
	}{
		{"empty code", PromoCode{DiscountType: DiscountFixed, Value: decimal.NewFromInt(1)}, ErrInvalidCode},
		{"bad type", PromoCode{Code: "X", DiscountType: "bogo", Value: decimal.NewFromInt(1)}, ErrInvalidDiscountType},
		{"zero value", PromoCode{Code: "X", DiscountType: DiscountFixed}, ErrInvalidValue},
		{"percentage over 100", PromoCode{Code: "X", DiscountType: DiscountPercentage, Value: decimal.NewFromInt(101)}, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStaticRegistry([]PromoCode{tt.code})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseYAML_BadDate(t *testing.T) {
	_, err := ParseYAML([]byte(`promo_codes:
  - code: X
    discount_type: fixed
    discount_value: 1
    valid_until: "31/12/2026"
`))
	assert.Error(t, err)
}
