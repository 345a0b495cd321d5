package command

import (
	"context"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/promo"
)

type Handler struct {
	cartSvc  *cart.Service
	orderSvc *order.Service
}

func NewHandler(cartSvc *cart.Service, orderSvc *order.Service) *Handler {
	return &Handler{
		cartSvc:  cartSvc,
		orderSvc: orderSvc,
	}
}

// AddToCart adds a configured product and returns the line key
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (string, error) {
	return h.cartSvc.AddItem(ctx, cmd.UserID, cmd.ProductID, cmd.Selection, cmd.Quantity)
}

func (h *Handler) UpdateCartItem(ctx context.Context, cmd UpdateCartItem) error {
	return h.cartSvc.UpdateItem(ctx, cmd.UserID, cmd.Key, cmd.Quantity)
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	return h.cartSvc.RemoveItem(ctx, cmd.UserID, cmd.Key)
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	return h.cartSvc.Clear(ctx, cmd.UserID)
}

func (h *Handler) SaveForLater(ctx context.Context, cmd SaveForLater) error {
	return h.cartSvc.SaveForLater(ctx, cmd.UserID, cmd.Key)
}

func (h *Handler) MoveToCart(ctx context.Context, cmd MoveToCart) error {
	return h.cartSvc.MoveToCart(ctx, cmd.UserID, cmd.Key)
}

func (h *Handler) RemoveSaved(ctx context.Context, cmd RemoveSaved) error {
	return h.cartSvc.RemoveSaved(ctx, cmd.UserID, cmd.Key)
}

// ApplyPromo returns the validation result; a rejected code is not an error
func (h *Handler) ApplyPromo(ctx context.Context, cmd ApplyPromo) (promo.Result, error) {
	return h.cartSvc.ApplyPromo(ctx, cmd.UserID, cmd.Code)
}

func (h *Handler) RemovePromo(ctx context.Context, cmd RemovePromo) error {
	return h.cartSvc.RemovePromo(ctx, cmd.UserID)
}

func (h *Handler) RecordView(ctx context.Context, cmd RecordView) error {
	return h.cartSvc.RecordView(ctx, cmd.UserID, cmd.ProductID)
}

// PlaceOrder validates the checkout form and submits the cart
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	return h.orderSvc.PlaceOrder(ctx, cmd.UserID, cmd.Form)
}
