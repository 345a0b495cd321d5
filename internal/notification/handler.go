package notification

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
)

// Mailer sends order confirmations.
type Mailer interface {
	SendOrderConfirmation(to string, c email.Confirmation) error
}

// Handler turns OrderPlaced events into confirmation emails
type Handler struct {
	mailer Mailer
	logger *zap.Logger
}

func NewHandler(mailer Mailer, logger *zap.Logger) *Handler {
	return &Handler{
		mailer: mailer,
		logger: logger.Named("notifier"),
	}
}

// HandleMessage processes a message from Kafka. Malformed payloads are logged
// and skipped so one bad record does not stall the partition; send failures
// are returned.
func (h *Handler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	if msg.EventType != order.EventOrderPlaced {
		return nil
	}

	var e order.OrderPlaced
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		h.logger.Error("failed to unmarshal OrderPlaced event", zap.ByteString("key", msg.Key), zap.Error(err))
		return nil
	}

	to := e.ShippingInfo.Email
	if to == "" {
		h.logger.Warn("order has no email address", zap.String("order_id", e.OrderID))
		return nil
	}

	h.logger.Info("processing OrderPlaced", zap.String("order_id", e.OrderID), zap.String("user_id", e.UserID))
	if err := h.mailer.SendOrderConfirmation(to, toConfirmation(e)); err != nil {
		h.logger.Error("failed to send confirmation", zap.String("order_id", e.OrderID), zap.Error(err))
		return err
	}

	h.logger.Info("confirmation sent", zap.String("order_id", e.OrderID))
	return nil
}

func toConfirmation(e order.OrderPlaced) email.Confirmation {
	items := make([]email.Item, 0, len(e.Items))
	for _, item := range e.Items {
		name := item.ProductName
		if name == "" {
			name = item.ProductID
		}
		items = append(items, email.Item{
			Name:      name,
			Variants:  strings.Join(item.Variants.IDs(), " / "),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}

	s := e.ShippingInfo
	var address []string
	for _, part := range []string{s.Address, s.City, s.State, s.ZipCode, s.Country} {
		if part != "" {
			address = append(address, part)
		}
	}

	return email.Confirmation{
		OrderID:          e.OrderID,
		CustomerName:     s.FullName,
		Items:            items,
		Subtotal:         e.Pricing.Subtotal,
		QuantityDiscount: e.Pricing.QuantityDiscount,
		PromoCode:        e.Pricing.PromoCode,
		PromoDiscount:    e.Pricing.PromoDiscount,
		Shipping:         e.Pricing.Shipping,
		Total:            e.Pricing.Total,
		ShippingAddress:  strings.Join(address, ", "),
	}
}
