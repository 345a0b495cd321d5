package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/promo"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
)

var testNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	keys   []string
	types  []string
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key, eventType string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.types = append(p.types, eventType)
	p.events = append(p.events, event)
	return nil
}

func newTestCartService(t *testing.T) *cart.Service {
	t.Helper()
	products, err := product.SeedProducts()
	require.NoError(t, err)
	catalog, err := product.NewStaticCatalog(products)
	require.NoError(t, err)
	codes, err := promo.SeedPromoCodes()
	require.NoError(t, err)
	registry, err := promo.NewStaticRegistry(codes)
	require.NoError(t, err)
	validator := promo.NewValidator(registry, promo.WithClock(func() time.Time { return testNow }))
	return cart.NewService(catalog, mocks.NewMockCartStore(), validator)
}

func newTestOrderService(t *testing.T) (*Service, *cart.Service, *recordingPublisher) {
	t.Helper()
	carts := newTestCartService(t)
	pub := &recordingPublisher{}
	svc := NewService(carts,
		WithPublisher(pub),
		WithProcessingDelay(0),
		WithClock(func() time.Time { return testNow }),
	)
	return svc, carts, pub
}

var chair = product.Selection{Color: "color-black", Material: "material-mesh", Size: "size-m"}

// ============================================
// ShippingCost Tests
// ============================================

func TestShippingCost(t *testing.T) {
	tests := []struct {
		total    int
		method   ShippingMethod
		expected int
	}{
		{19999, ShippingStandard, 100},
		{19999, ShippingExpress, 300},
		{20000, ShippingStandard, 0},
		{20000, ShippingExpress, 0},
		{0, ShippingStandard, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ShippingCost(tt.total, tt.method), "%d %s", tt.total, tt.method)
	}
}

// ============================================
// PlaceOrder Tests
// ============================================

func TestService_PlaceOrder_Success(t *testing.T) {
	svc, carts, pub := newTestOrderService(t)
	ctx := context.Background()
	_, err := carts.AddItem(ctx, "user-1", "prod-001", chair, 5)
	require.NoError(t, err)
	_, err = carts.ApplyPromo(ctx, "user-1", "WELCOME10")
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, "user-1", validForm())

	require.NoError(t, err)
	assert.Equal(t, "ORD-1768478400000", order.OrderID)
	assert.Equal(t, Pricing{
		Subtotal:         79995,
		QuantityDiscount: 8000,
		PromoCode:        "WELCOME10",
		PromoDiscount:    7200,
		Shipping:         0,
		Total:            64795,
	}, order.Pricing)
	assert.Equal(t, "৳64,795", order.GrandTotalDisplay)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Premium Office Chair", order.Items[0].ProductName)
	assert.Equal(t, 71995, order.Items[0].LineTotal)
	assert.Equal(t, DefaultCountry, order.ShippingInfo.Country)

	assert.Equal(t, []string{order.OrderID}, pub.keys)
	assert.Equal(t, []string{EventOrderPlaced}, pub.types)

	v, err := carts.View(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Empty(t, v.Summary.PromoCode)
}

func TestService_PlaceOrder_ChargesShippingBelowThreshold(t *testing.T) {
	svc, carts, _ := newTestOrderService(t)
	ctx := context.Background()
	_, _ = carts.AddItem(ctx, "user-1", "prod-001", chair, 1)
	form := validForm()
	form.ShippingMethod = ShippingExpress
	form.PaymentMethod = PaymentCOD

	order, err := svc.PlaceOrder(ctx, "user-1", form)

	require.NoError(t, err)
	assert.Equal(t, 300, order.Pricing.Shipping)
	assert.Equal(t, 16299, order.Pricing.Total)
	assert.Empty(t, order.Pricing.PromoCode)
}

func TestService_PlaceOrder_EmptyCart(t *testing.T) {
	svc, _, pub := newTestOrderService(t)

	_, err := svc.PlaceOrder(context.Background(), "user-1", validForm())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, pub.keys)
}

func TestService_PlaceOrder_InvalidForm(t *testing.T) {
	svc, carts, pub := newTestOrderService(t)
	ctx := context.Background()
	_, _ = carts.AddItem(ctx, "user-1", "prod-001", chair, 1)
	form := validForm()
	form.AgreedToTerms = false

	_, err := svc.PlaceOrder(ctx, "user-1", form)

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "You must agree to terms & conditions", verr["terms"])
	assert.Empty(t, pub.keys)
}

func TestService_PlaceOrder_PublishFailureKeepsCart(t *testing.T) {
	svc, carts, pub := newTestOrderService(t)
	ctx := context.Background()
	_, _ = carts.AddItem(ctx, "user-1", "prod-001", chair, 1)
	pub.err = errors.New("broker unavailable")

	_, err := svc.PlaceOrder(ctx, "user-1", validForm())

	require.Error(t, err)
	v, _ := carts.View(ctx, "user-1")
	assert.Len(t, v.Items, 1)
}

func TestService_PlaceOrder_CancelledDuringDelay(t *testing.T) {
	carts := newTestCartService(t)
	pub := &recordingPublisher{}
	svc := NewService(carts, WithPublisher(pub), WithProcessingDelay(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	_, _ = carts.AddItem(ctx, "user-1", "prod-001", chair, 1)

	cancel()
	_, err := svc.PlaceOrder(ctx, "user-1", validForm())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pub.keys)
}

func TestService_PlaceOrder_WithoutPublisher(t *testing.T) {
	carts := newTestCartService(t)
	svc := NewService(carts, WithProcessingDelay(0))
	ctx := context.Background()
	_, _ = carts.AddItem(ctx, "user-1", "prod-001", chair, 1)

	order, err := svc.PlaceOrder(ctx, "user-1", validForm())

	require.NoError(t, err)
	assert.Contains(t, order.OrderID, "ORD-")
}
