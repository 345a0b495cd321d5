package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/pricing"
)

const (
	FreeShippingThreshold = 20000
	StandardShippingCost  = 100
	ExpressShippingCost   = 300

	DefaultProcessingDelay = 2 * time.Second
)

var ErrEmptyCart = errors.New("cart is empty")

// ShippingCost is free from FreeShippingThreshold upward, otherwise it
// depends on the method.
func ShippingCost(total int, method ShippingMethod) int {
	if total >= FreeShippingThreshold {
		return 0
	}
	if method == ShippingExpress {
		return ExpressShippingCost
	}
	return StandardShippingCost
}

// CartSource is the part of the cart service checkout needs.
type CartSource interface {
	View(ctx context.Context, userID string) (cart.View, error)
	Clear(ctx context.Context, userID string) error
}

// Publisher announces placed orders. kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, event any) error
}

// Order is what the shopper gets back after a successful checkout.
type Order struct {
	OrderPlaced
	GrandTotalDisplay string `json:"grand_total_display"`
}

type Service struct {
	carts     CartSource
	validator *FormValidator
	publisher Publisher
	delay     time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithProcessingDelay sets the simulated payment processing time.
func WithProcessingDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(carts CartSource, opts ...Option) *Service {
	s := &Service{
		carts:     carts,
		validator: NewFormValidator(),
		delay:     DefaultProcessingDelay,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "checkout"))
	return s
}

// PlaceOrder validates the form, prices the cart, waits out the simulated
// processing time, announces the order and empties the cart. If the
// announcement fails the cart is left as it was.
func (s *Service) PlaceOrder(ctx context.Context, userID string, form Form) (*Order, error) {
	form.Normalize()
	if err := s.validator.Validate(form); err != nil {
		return nil, err
	}

	view, err := s.carts.View(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(view.Summary.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	placed := s.build(userID, form, view.Summary)
	s.logger.Info("order placed",
		zap.String("order_id", placed.OrderID),
		zap.String("user_id", userID),
		zap.Int("items", len(placed.Items)),
		zap.Int("total", placed.Pricing.Total),
		zap.String("payment_method", string(placed.PaymentMethod)),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, placed.OrderID, EventOrderPlaced, placed); err != nil {
			return nil, fmt.Errorf("failed to publish order: %w", err)
		}
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Warn("failed to clear cart after order", zap.String("order_id", placed.OrderID), zap.Error(err))
	}

	return &Order{
		OrderPlaced:       placed,
		GrandTotalDisplay: pricing.FormatPrice(placed.Pricing.Total),
	}, nil
}

func (s *Service) build(userID string, form Form, summary cart.Summary) OrderPlaced {
	now := s.now()
	items := make([]OrderItem, 0, len(summary.Lines))
	for _, l := range summary.Lines {
		items = append(items, OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Variants:    l.Selection,
			Quantity:    l.Quantity,
			LineTotal:   l.FinalPrice,
		})
	}

	shipping := ShippingCost(summary.Total, form.ShippingMethod)
	var promoCode string
	if summary.PromoDiscount > 0 {
		promoCode = summary.PromoCode
	}
	return OrderPlaced{
		OrderID:        fmt.Sprintf("ORD-%d", now.UnixMilli()),
		UserID:         userID,
		Items:          items,
		ShippingInfo:   form.Shipping,
		ShippingMethod: form.ShippingMethod,
		PaymentMethod:  form.PaymentMethod,
		Pricing: Pricing{
			Subtotal:         summary.Subtotal,
			QuantityDiscount: summary.QuantityDiscount,
			PromoCode:        promoCode,
			PromoDiscount:    summary.PromoDiscount,
			Shipping:         shipping,
			Total:            summary.Total + shipping,
		},
		PlacedAt: now,
	}
}
