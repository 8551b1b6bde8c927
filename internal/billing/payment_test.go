package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPaymentDescriptor(t *testing.T) {
	req := PaymentRequest{
		IBAN:           "CZ6508000000192000145399",
		Amount:         1210,
		Currency:       "CZK",
		DocumentNumber: "2025-010",
		Message:        "Faktura 2025-010",
		Method:         PaymentBankTransfer,
	}
	got, ok := BuildPaymentDescriptor(req)
	assert.True(t, ok)
	assert.Equal(t, "SPD*1.0*ACC:CZ6508000000192000145399*AM:1210.00*CC:CZK*MSG:Faktura 2025-010*X-VS:2025010", got)
}

func TestBuildPaymentDescriptor_Suppressed(t *testing.T) {
	base := PaymentRequest{IBAN: "CZ6508000000192000145399", Amount: 100, DocumentNumber: "F1"}
	tests := []struct {
		name string
		mod  func(*PaymentRequest)
	}{
		{"cash", func(r *PaymentRequest) { r.Method = PaymentCash }},
		{"empty iban", func(r *PaymentRequest) { r.IBAN = "" }},
		{"zero amount", func(r *PaymentRequest) { r.Amount = 0 }},
		{"negative amount", func(r *PaymentRequest) { r.Amount = -5 }},
		{"numberless document", func(r *PaymentRequest) { r.DocumentNumber = "draft" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mod(&req)
			got, ok := BuildPaymentDescriptor(req)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestBuildPaymentDescriptor_Defaults(t *testing.T) {
	got, ok := BuildPaymentDescriptor(PaymentRequest{
		IBAN:           "cz65 0800 0000 1920 0014 5399",
		Amount:         37.5,
		DocumentNumber: "DL-7",
		Message:        "a*b",
	})
	assert.True(t, ok)
	assert.Equal(t, "SPD*1.0*ACC:CZ6508000000192000145399*AM:37.50*CC:CZK*MSG:a b*X-VS:7", got)
}
