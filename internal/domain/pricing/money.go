package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes formatted amounts (Bangladeshi taka).
const CurrencySymbol = "৳"

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
	printer = message.NewPrinter(language.English)
)

// RoundHalfUp rounds to the nearest whole currency unit, ties toward +inf.
func RoundHalfUp(d decimal.Decimal) int {
	return int(d.Add(half).Floor().IntPart())
}

// PercentOf returns round-half-up(amount * percent / 100).
func PercentOf(amount int, percent decimal.Decimal) int {
	return RoundHalfUp(decimal.NewFromInt(int64(amount)).Mul(percent).Div(hundred))
}

// FormatAmount renders an amount with thousands separators, e.g. 5000 -> "5,000".
func FormatAmount(amount int) string {
	return printer.Sprintf("%d", amount)
}

// FormatPrice renders an amount with the currency symbol, e.g. "৳5,000".
func FormatPrice(amount int) string {
	return CurrencySymbol + FormatAmount(amount)
}
