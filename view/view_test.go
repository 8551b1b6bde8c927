package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-faktury/i18n"
	"github.com/diewo77/go-faktury/internal/billing"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/pdf"
)

func f(v float64) *float64 { return &v }

func invoiceDoc(lang string) pdf.Document {
	inv := &models.Invoice{
		Number:         "2025-001",
		Customer:       &models.Customer{Name: "Odběratel s.r.o."},
		IssueDate:      time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		PaymentMethod:  billing.PaymentBankTransfer,
		Currency:       "CZK",
		TaxEnabled:     true,
		DefaultTaxRate: 21,
		Items: []models.InvoiceItem{
			{Description: "Práce", Quantity: 1.5, Unit: "h", UnitPrice: 1000, LineTotal: 1500},
			{Description: "Materiál", Quantity: 1, Unit: "ks", UnitPrice: 100, LineTotal: 100, TaxRate: f(12)},
		},
	}
	st := &models.Settings{Name: "Dodavatel", BankAccount: "19-2000145399/0800"}
	return pdf.FromInvoice(inv, st, "", lang)
}

func TestRenderInvoice(t *testing.T) {
	ResetForTests()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/invoices/1/print", nil)
	req = req.WithContext(i18n.WithLang(req.Context(), "cs"))

	err := Render(rec, req, "invoice.html", map[string]any{
		"Doc":   invoiceDoc("cs"),
		"QRURL": "/invoices/1/qr.png",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"2025-001",
		"Odběratel s.r.o.",
		"CZ6508000000192000145399",
		"2025001",
		"12 %",
		"21 %",
		"/invoices/1/qr.png",
		`lang="cs"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("output misses %q", want)
		}
	}
	if strings.Index(body, "12 %</td><td") > strings.Index(body, "21 %</td><td") {
		t.Error("VAT table not sorted ascending")
	}
}

func TestRenderUsesRequestLanguage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(i18n.WithLang(req.Context(), "en"))
	if err := Render(rec, req, "invoice.html", map[string]any{"Doc": invoiceDoc("en")}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.Body.String(), i18n.T("en", "invoice")) {
		t.Error("english label missing")
	}
	if strings.Contains(rec.Body.String(), "qr.png") {
		t.Error("QR block rendered without a code")
	}
}

func TestRenderDeliveryNoteHidesPrices(t *testing.T) {
	note := &models.DeliveryNote{
		Number: "DL-1",
		Items:  []models.DeliveryNoteItem{{Description: "Paleta", Quantity: 2, Unit: "ks", Price: "99,9"}},
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	doc := pdf.FromDeliveryNote(note, &models.Settings{Name: "Dodavatel", Currency: "CZK"}, "cs")
	if err := Render(rec, req, "delivery_note.html", map[string]any{"Doc": doc}); err != nil {
		t.Fatal(err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Paleta") {
		t.Error("item missing")
	}
	if strings.Contains(body, "99,90") {
		t.Error("price shown although ShowPrices is false")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	err := Render(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "missing.html", nil)
	if err == nil {
		t.Fatal("expected error")
	}
}
