package email

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func sampleConfirmation() Confirmation {
	return Confirmation{
		OrderID:      "ORD-1768478400000",
		CustomerName: "Rahim <b>Uddin</b>",
		Items: []Item{
			{Name: "Premium Office Chair", Variants: "Midnight Black / Breathable Mesh / Medium", Quantity: 5, LineTotal: 71995},
		},
		Subtotal:         79995,
		QuantityDiscount: 8000,
		PromoCode:        "WELCOME10",
		PromoDiscount:    7200,
		Total:            64795,
		ShippingAddress:  "12 Gulshan Ave, Dhaka",
	}
}

// ============================================
// Template Tests
// ============================================

func TestBuildOrderConfirmationBody(t *testing.T) {
	body, err := BuildOrderConfirmationBody(sampleConfirmation())

	require.NoError(t, err)
	assert.Contains(t, body, "ORD-1768478400000")
	assert.Contains(t, body, "Premium Office Chair")
	assert.Contains(t, body, "৳71,995")
	assert.Contains(t, body, "-৳8,000")
	assert.Contains(t, body, "Promo (WELCOME10)")
	assert.Contains(t, body, "৳64,795")
	assert.Contains(t, body, "Free")
	assert.NotContains(t, body, "<b>Uddin</b>")
}

func TestBuildOrderConfirmationBody_NoDiscounts(t *testing.T) {
	c := sampleConfirmation()
	c.QuantityDiscount, c.PromoDiscount, c.Shipping = 0, 0, 100

	body, err := BuildOrderConfirmationBody(c)

	require.NoError(t, err)
	assert.NotContains(t, body, "Quantity discount")
	assert.NotContains(t, body, "Promo (")
	assert.Contains(t, body, "৳100")
}

// ============================================
// Service Tests
// ============================================

func TestService_SendOrderConfirmation(t *testing.T) {
	sender := &captureSender{}
	svc := NewServiceWithSender(sender, "shop@example.com")

	err := svc.SendOrderConfirmation("rahim@example.com", sampleConfirmation())

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, []string{"shop@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"rahim@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Order confirmed: ORD-1768478400000"}, m.GetHeader("Subject"))
}

func TestService_SendOrderConfirmation_SenderError(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	svc := NewServiceWithSender(sender, "shop@example.com")

	err := svc.SendOrderConfirmation("rahim@example.com", sampleConfirmation())

	assert.EqualError(t, err, "connection refused")
}
