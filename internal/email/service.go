package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Service handles email sending via SMTP
type Service struct {
	sender Sender
	from   string
}

// NewService creates an email service that sends through an unauthenticated
// SMTP relay.
func NewService(host string, port int, from string) *Service {
	return NewServiceWithSender(gomail.NewDialer(host, port, "", ""), from)
}

func NewServiceWithSender(sender Sender, from string) *Service {
	return &Service{sender: sender, from: from}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to string, c Confirmation) error {
	body, err := BuildOrderConfirmationBody(c)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Order confirmed: %s", c.OrderID)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.sender.DialAndSend(m)
}
