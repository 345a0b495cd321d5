package email

import (
	"html/template"
	"strings"

	"github.com/example/ec-storefront/internal/domain/pricing"
)

// Item is one order line as shown in the email.
type Item struct {
	Name      string
	Variants  string
	Quantity  int
	LineTotal int
}

// Confirmation is the data an order confirmation email renders.
type Confirmation struct {
	OrderID          string
	CustomerName     string
	Items            []Item
	Subtotal         int
	QuantityDiscount int
	PromoCode        string
	PromoDiscount    int
	Shipping         int
	Total            int
	ShippingAddress  string
}

var confirmationTemplate = template.Must(template.New("confirmation").
	Funcs(template.FuncMap{"price": pricing.FormatPrice}).
	Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #000; padding: 30px;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none;">
		<p style="margin-top: 0;">Hi {{.CustomerName}}, we have received your order.</p>

		<div style="background: #f8f9fa; padding: 15px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">{{.OrderID}}</p>
		</div>

		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left;">Item</th>
					<th style="padding: 12px; text-align: center;">Qty</th>
					<th style="padding: 12px; text-align: right;">Total</th>
				</tr>
			</thead>
			<tbody>
{{- range .Items}}
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee;">{{.Name}}{{if .Variants}}<br><small style="color: #666;">{{.Variants}}</small>{{end}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{price .LineTotal}}</td>
				</tr>
{{- end}}
			</tbody>
		</table>

		<table style="width: 100%; margin: 20px 0;">
			<tr><td>Subtotal</td><td style="text-align: right;">{{price .Subtotal}}</td></tr>
{{- if .QuantityDiscount}}
			<tr><td>Quantity discount</td><td style="text-align: right;">-{{price .QuantityDiscount}}</td></tr>
{{- end}}
{{- if .PromoDiscount}}
			<tr><td>Promo ({{.PromoCode}})</td><td style="text-align: right;">-{{price .PromoDiscount}}</td></tr>
{{- end}}
			<tr><td>Shipping</td><td style="text-align: right;">{{if .Shipping}}{{price .Shipping}}{{else}}Free{{end}}</td></tr>
			<tr><td style="font-weight: bold;">Total</td><td style="text-align: right; font-size: 20px; font-weight: bold;">{{price .Total}}</td></tr>
		</table>

{{- if .ShippingAddress}}
		<p style="font-size: 14px; color: #666;">Shipping to: {{.ShippingAddress}}</p>
{{- end}}

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This email was sent automatically. Contact support if you have any questions.
		</p>
	</div>
</body>
</html>`))

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(c Confirmation) (string, error) {
	var b strings.Builder
	if err := confirmationTemplate.Execute(&b, c); err != nil {
		return "", err
	}
	return b.String(), nil
}
