package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/promo"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
)

var testNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

var chair = product.Selection{Color: "color-black", Material: "material-mesh", Size: "size-m"}

func newTestHandler(t *testing.T) (*Handler, *mocks.MockCartStore) {
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

	cartStore := mocks.NewMockCartStore()
	cartSvc := cart.NewService(catalog, cartStore, validator, cart.WithClock(func() time.Time { return testNow }))
	orderSvc := order.NewService(cartSvc, order.WithProcessingDelay(0), order.WithClock(func() time.Time { return testNow }))
	return NewHandler(cartSvc, orderSvc), cartStore
}

// ============================================
// Cart Command Tests
// ============================================

func TestHandler_AddToCart(t *testing.T) {
	handler, cartStore := newTestHandler(t)
	ctx := context.Background()

	key, err := handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-001", Selection: chair, Quantity: 2})

	require.NoError(t, err)
	assert.Equal(t, "prod-001|color-black|material-mesh|size-m", key)
	calls := cartStore.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "PutItem", calls[0].Op)
	assert.Equal(t, store.ListCart, calls[0].List)
}

func TestHandler_AddToCart_UnknownProduct(t *testing.T) {
	handler, cartStore := newTestHandler(t)

	_, err := handler.AddToCart(context.Background(), AddToCart{UserID: "user-1", ProductID: "nope", Selection: chair, Quantity: 1})

	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Empty(t, cartStore.Calls())
}

func TestHandler_UpdateRemoveClear(t *testing.T) {
	handler, cartStore := newTestHandler(t)
	ctx := context.Background()
	key, err := handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-001", Selection: chair, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, handler.UpdateCartItem(ctx, UpdateCartItem{UserID: "user-1", Key: key, Quantity: 3}))
	items, _ := cartStore.Backing().GetItems(ctx, "user-1", store.ListCart)
	assert.Equal(t, 3, items[0].Quantity)

	require.NoError(t, handler.RemoveFromCart(ctx, RemoveFromCart{UserID: "user-1", Key: key}))
	assert.ErrorIs(t, handler.RemoveFromCart(ctx, RemoveFromCart{UserID: "user-1", Key: key}), cart.ErrLineNotFound)

	_, _ = handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-001", Selection: chair, Quantity: 1})
	require.NoError(t, handler.ClearCart(ctx, ClearCart{UserID: "user-1"}))
	items, _ = cartStore.Backing().GetItems(ctx, "user-1", store.ListCart)
	assert.Empty(t, items)
}

func TestHandler_SavedForLater(t *testing.T) {
	handler, cartStore := newTestHandler(t)
	ctx := context.Background()
	key, _ := handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-001", Selection: chair, Quantity: 1})

	require.NoError(t, handler.SaveForLater(ctx, SaveForLater{UserID: "user-1", Key: key}))
	saved, _ := cartStore.Backing().GetItems(ctx, "user-1", store.ListSaved)
	assert.Len(t, saved, 1)

	require.NoError(t, handler.MoveToCart(ctx, MoveToCart{UserID: "user-1", Key: key}))
	require.NoError(t, handler.SaveForLater(ctx, SaveForLater{UserID: "user-1", Key: key}))
	require.NoError(t, handler.RemoveSaved(ctx, RemoveSaved{UserID: "user-1", Key: key}))
	saved, _ = cartStore.Backing().GetItems(ctx, "user-1", store.ListSaved)
	assert.Empty(t, saved)
}

func TestHandler_StoreFailure(t *testing.T) {
	handler, cartStore := newTestHandler(t)
	ctx := context.Background()
	_, err := handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-001", Selection: chair, Quantity: 1})
	require.NoError(t, err)

	cartStore.WriteErr = errors.New("database error")
	_, err = handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-002", Selection: product.Selection{Color: "color-white", Material: "material-laminate", Size: "size-120"}, Quantity: 1})

	assert.ErrorContains(t, err, "database error")
}

// ============================================
// Promo Command Tests
// ============================================

func TestHandler_ApplyAndRemovePromo(t *testing.T) {
	handler, cartStore := newTestHandler(t)
	ctx := context.Background()
	_, _ = handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-001", Selection: chair, Quantity: 1})

	res, err := handler.ApplyPromo(ctx, ApplyPromo{UserID: "user-1", Code: "WELCOME10"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 1600, res.Discount)

	require.NoError(t, handler.RemovePromo(ctx, RemovePromo{UserID: "user-1"}))
	p, _ := cartStore.Backing().GetAppliedPromo(ctx, "user-1")
	assert.Nil(t, p)
}

func TestHandler_RecordView(t *testing.T) {
	handler, cartStore := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, handler.RecordView(ctx, RecordView{UserID: "user-1", ProductID: "prod-002"}))

	recent, _ := cartStore.Backing().GetRecentlyViewed(ctx, "user-1")
	assert.Equal(t, []string{"prod-002"}, recent)
}

// ============================================
// Order Command Tests
// ============================================

func TestHandler_PlaceOrder(t *testing.T) {
	handler, _ := newTestHandler(t)
	ctx := context.Background()
	_, _ = handler.AddToCart(ctx, AddToCart{UserID: "user-1", ProductID: "prod-001", Selection: chair, Quantity: 2})

	placed, err := handler.PlaceOrder(ctx, PlaceOrder{UserID: "user-1", Form: order.Form{
		Shipping: order.ShippingInfo{
			FullName: "Rahim Uddin",
			Email:    "rahim@example.com",
			Phone:    "01700000000",
			Address:  "12 Gulshan Ave",
			City:     "Dhaka",
			ZipCode:  "1212",
		},
		PaymentMethod: order.PaymentCOD,
		AgreedToTerms: true,
	}})

	require.NoError(t, err)
	assert.Equal(t, 31998, placed.Pricing.Total)
	assert.Equal(t, 0, placed.Pricing.Shipping)
}

func TestHandler_PlaceOrder_InvalidForm(t *testing.T) {
	handler, _ := newTestHandler(t)

	_, err := handler.PlaceOrder(context.Background(), PlaceOrder{UserID: "user-1", Form: order.Form{}})

	var verr order.ValidationError
	assert.ErrorAs(t, err, &verr)
}
