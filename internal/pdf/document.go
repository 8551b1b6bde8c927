// Package pdf renders invoices and delivery notes as printable A4 PDFs.
package pdf

import (
	"time"

	"github.com/diewo77/go-faktury/internal/billing"
	"github.com/diewo77/go-faktury/internal/models"
)

// Row is one printed item row.
type Row struct {
	Description string
	Quantity    float64
	Unit        string
	UnitPrice   float64
	Total       float64
	TaxRate     *float64
}

// Document is everything printed on one document, already computed.
type Document struct {
	Lang     string
	Title    string
	Number   string
	Supplier models.Party
	Customer models.Party

	IssueDate   time.Time
	TaxableDate time.Time
	DueDate     time.Time

	PaymentMethod  billing.PaymentMethod
	BankAccount    string
	IBAN           string
	VariableSymbol string
	Currency       string

	VATPayer   bool
	ShowPrices bool
	Rows       []Row
	Breakdown  billing.TaxBreakdown
	Subtotal   float64
	Total      float64

	// PaymentCode is the SPD payload; empty omits the QR block.
	PaymentCode string
	Logo        []byte
	LogoType    string
	Notes       string
}

// FromInvoice assembles the printable form of an invoice.
func FromInvoice(inv *models.Invoice, st *models.Settings, paymentCode, lang string) Document {
	totals := inv.Totals()
	doc := Document{
		Lang:           lang,
		Title:          "invoice",
		Number:         inv.Number,
		Supplier:       st.Party(),
		IssueDate:      inv.IssueDate,
		TaxableDate:    inv.TaxableDate,
		DueDate:        inv.DueDate,
		PaymentMethod:  inv.PaymentMethod,
		BankAccount:    st.BankAccount,
		IBAN:           st.IBAN(),
		VariableSymbol: billing.VariableSymbol(inv.Number),
		Currency:       inv.Currency,
		VATPayer:       inv.TaxEnabled,
		ShowPrices:     true,
		Breakdown:      totals.TaxBreakdown,
		Subtotal:       totals.Subtotal,
		Total:          totals.Total,
		PaymentCode:    paymentCode,
		Notes:          inv.Notes,
	}
	if inv.Customer != nil {
		doc.Customer = inv.Customer.Party()
	}
	for _, it := range inv.Items {
		rate := it.TaxRate
		if rate == nil && inv.TaxEnabled {
			r := inv.DefaultTaxRate
			rate = &r
		}
		doc.Rows = append(doc.Rows, Row{
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			Total:       it.LineTotal,
			TaxRate:     rate,
		})
	}
	return doc
}

// FromDeliveryNote assembles the printable form of a delivery note.
func FromDeliveryNote(note *models.DeliveryNote, st *models.Settings, lang string) Document {
	totals := note.Totals()
	doc := Document{
		Lang:       lang,
		Title:      "delivery_note",
		Number:     note.Number,
		Supplier:   st.Party(),
		IssueDate:  note.IssueDate,
		Currency:   st.Currency,
		VATPayer:   st.VATPayer,
		ShowPrices: note.ShowPrices,
		Breakdown:  totals.TaxBreakdown,
		Subtotal:   totals.TotalWithoutTax,
		Total:      totals.TotalWithTax,
		Notes:      note.Notes,
	}
	if note.Customer != nil {
		doc.Customer = note.Customer.Party()
	}
	for _, it := range note.Items {
		li := it.LineItem()
		doc.Rows = append(doc.Rows, Row{
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   li.Price.Float(),
			Total:       li.Amount(),
			TaxRate:     it.TaxRate,
		})
	}
	return doc
}
