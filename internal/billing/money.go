package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with exactly two decimals and a decimal
// point, the form payment descriptors expect ("1234.50").
func FormatAmount(amount float64) string {
	if !finite(amount) {
		amount = 0
	}
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatMoney renders an amount for people: thousands separated by spaces, a
// decimal comma and the currency symbol as suffix ("1 234,50 Kč").
func FormatMoney(amount float64, currency string) string {
	s := FormatAmount(amount)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i := range len(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(whole[i])
	}
	b.WriteByte(',')
	b.WriteString(frac)
	if sym := CurrencySymbol(currency); sym != "" {
		b.WriteByte(' ')
		b.WriteString(sym)
	}
	return b.String()
}

// CurrencySymbol maps an ISO currency code to its local symbol. Unknown codes
// are returned as-is; an empty code means CZK.
func CurrencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "", DefaultCurrency:
		return "Kč"
	case "EUR":
		return "€"
	default:
		return strings.ToUpper(code)
	}
}
