package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-faktury/internal/billing"
	"github.com/diewo77/go-faktury/internal/models"
)

func f(v float64) *float64 { return &v }

func sampleInvoice() (*models.Invoice, *models.Settings) {
	st := &models.Settings{
		Name:           "Jan Novák",
		Street:         "Dlouhá",
		HouseNumber:    "12",
		PostalCode:     "110 00",
		City:           "Praha",
		TaxID:          "27074358",
		BankAccount:    "19-2000145399/0800",
		Currency:       "CZK",
		VATPayer:       true,
		DefaultVATRate: 21,
	}
	inv := &models.Invoice{
		Number:         "2025-007",
		Customer:       &models.Customer{Name: "Žluťoučký kůň s.r.o.", City: "Brno"},
		IssueDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		TaxableDate:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		DueDate:        time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC),
		PaymentMethod:  billing.PaymentBankTransfer,
		Currency:       "CZK",
		TaxEnabled:     true,
		DefaultTaxRate: 21,
		Items: []models.InvoiceItem{
			{Description: "Konzultace", Quantity: 2, Unit: "h", UnitPrice: 500, LineTotal: 1000},
			{Description: "Kniha", Quantity: 1, Unit: "ks", UnitPrice: 200, LineTotal: 200, TaxRate: f(12)},
		},
	}
	return inv, st
}

func TestFromInvoice(t *testing.T) {
	inv, st := sampleInvoice()
	doc := FromInvoice(inv, st, "SPD*1.0*ACC:CZ6508000000192000145399", "cs")

	if doc.VariableSymbol != "2025007" {
		t.Errorf("variable symbol = %q", doc.VariableSymbol)
	}
	if doc.IBAN != "CZ6508000000192000145399" {
		t.Errorf("iban = %q", doc.IBAN)
	}
	if len(doc.Rows) != 2 {
		t.Fatalf("rows = %d", len(doc.Rows))
	}
	if doc.Rows[0].TaxRate == nil || *doc.Rows[0].TaxRate != 21 {
		t.Errorf("first row should fall back to the default rate, got %v", doc.Rows[0].TaxRate)
	}
	if got := doc.Breakdown.Rates(); len(got) != 2 || got[0] != 12 || got[1] != 21 {
		t.Errorf("rates = %v", got)
	}
	if doc.Customer.Name != "Žluťoučký kůň s.r.o." {
		t.Errorf("customer = %q", doc.Customer.Name)
	}
}

func TestFromDeliveryNote(t *testing.T) {
	st := &models.Settings{Name: "Dodavatel", Currency: "EUR", VATPayer: true}
	note := &models.DeliveryNote{
		Number:     "DL-3",
		ShowPrices: true,
		Items: []models.DeliveryNoteItem{
			{Description: "Paleta", Quantity: 3, Unit: "ks", Price: "10,5", TaxRate: f(21)},
		},
	}
	doc := FromDeliveryNote(note, st, "en")
	if doc.Currency != "EUR" {
		t.Errorf("currency = %q", doc.Currency)
	}
	if doc.Rows[0].UnitPrice != 10.5 || doc.Rows[0].Total != 31.5 {
		t.Errorf("row = %+v", doc.Rows[0])
	}
	if doc.PaymentCode != "" {
		t.Error("delivery notes carry no payment code")
	}
}

func TestRenderInvoice(t *testing.T) {
	inv, st := sampleInvoice()
	out, err := Render(FromInvoice(inv, st, "SPD*1.0*ACC:CZ6508000000192000145399*AM:1234.00*CC:CZK*X-VS:2025007", "cs"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a pdf: %q", out[:min(8, len(out))])
	}
	n, err := PageCount(out)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 1 {
		t.Errorf("pages = %d, want 1", n)
	}
}

func TestRenderDeliveryNoteWithoutPrices(t *testing.T) {
	note := &models.DeliveryNote{
		Number: "DL-1",
		Items:  []models.DeliveryNoteItem{{Description: "Šroub", Quantity: 100, Unit: "ks"}},
		Notes:  "Předáno na recepci",
	}
	out, err := Render(FromDeliveryNote(note, &models.Settings{Name: "Dodavatel"}, "cs"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("output is not a pdf")
	}
}

func TestMerge(t *testing.T) {
	inv, st := sampleInvoice()
	a, err := Render(FromInvoice(inv, st, "", "cs"))
	if err != nil {
		t.Fatal(err)
	}
	inv.Number = "2025-008"
	b, err := Render(FromInvoice(inv, st, "", "en"))
	if err != nil {
		t.Fatal(err)
	}

	merged, err := Merge([][]byte{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	n, err := PageCount(merged)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 2 {
		t.Errorf("pages = %d, want 2", n)
	}

	if _, err := Merge(nil); err != ErrNothingToMerge {
		t.Errorf("empty merge err = %v", err)
	}
	single, err := Merge([][]byte{a})
	if err != nil || !bytes.Equal(single, a) {
		t.Errorf("single merge should return the input unchanged")
	}
}

func TestFold(t *testing.T) {
	cases := map[string]string{
		"Žluťoučký kůň": "Zlutoucký kun",
		"Příliš":        "Prílis",
		"Kč":            "Kc",
		"plain":         "plain",
		"Müller":        "Müller",
	}
	for in, want := range cases {
		if got := fold(in); got != want {
			t.Errorf("fold(%q) = %q, want %q", in, got, want)
		}
	}
	if strings.ContainsRune(fold("ěščřžůň"), 'ě') {
		t.Error("fold kept ě")
	}
}
