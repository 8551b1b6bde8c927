package billing

import (
	"strings"
)

// DefaultCurrency is used when a document carries no currency code.
const DefaultCurrency = "CZK"

// PaymentMethod is how a document is expected to be settled.
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
)

// PaymentRequest carries what goes into a Short Payment Descriptor.
type PaymentRequest struct {
	IBAN           string
	Amount         float64
	Currency       string
	DocumentNumber string
	Message        string
	Method         PaymentMethod
}

// BuildPaymentDescriptor returns the SPD string for a QR payment code:
//
//	SPD*1.0*ACC:<iban>*AM:<amount>*CC:<currency>*MSG:<text>*X-VS:<reference>
//
// The second result is false, and the string empty, when no code should be
// shown: missing IBAN, non-positive amount, a document number without
// digits, or a cash payment.
func BuildPaymentDescriptor(req PaymentRequest) (string, bool) {
	if req.Method == PaymentCash {
		return "", false
	}
	iban := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(req.IBAN), " ", ""))
	if iban == "" {
		return "", false
	}
	if !finite(req.Amount) || req.Amount <= 0 {
		return "", false
	}
	vs := VariableSymbol(req.DocumentNumber)
	if vs == "" {
		return "", false
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	// "*" separates SPD fields
	msg := strings.ReplaceAll(req.Message, "*", " ")

	var b strings.Builder
	b.WriteString("SPD*1.0")
	b.WriteString("*ACC:" + iban)
	b.WriteString("*AM:" + FormatAmount(req.Amount))
	b.WriteString("*CC:" + currency)
	b.WriteString("*MSG:" + msg)
	b.WriteString("*X-VS:" + vs)
	return b.String(), true
}
