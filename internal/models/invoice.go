package models

import (
	"encoding/json"
	"time"

	"github.com/diewo77/go-faktury/internal/billing"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice represents a billing invoice.
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the owner of this invoice (for multi-tenant isolation)
	UserID uint `gorm:"not null;uniqueIndex:idx_invoices_user_number" json:"user_id"`
	Number string `gorm:"size:50;not null;uniqueIndex:idx_invoices_user_number" json:"number"`

	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	IssueDate   time.Time `gorm:"not null" json:"issue_date"`
	TaxableDate time.Time `json:"taxable_date"` // DUZP
	DueDate     time.Time `gorm:"not null" json:"due_date"`

	PaymentMethod  billing.PaymentMethod `gorm:"size:20;not null" json:"payment_method"`
	Currency       string                `gorm:"size:3;not null" json:"currency"`
	TaxEnabled     bool                  `json:"tax_enabled"`
	DefaultTaxRate float64               `json:"default_tax_rate"`

	Status InvoiceStatus `gorm:"size:20;default:'draft'" json:"status"`
	Notes  string        `gorm:"type:text" json:"notes,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`

	// TotalsSnapshot is the billing.Totals computed when the invoice was last saved.
	TotalsSnapshot datatypes.JSON `json:"totals,omitempty"`
}

// GetUserID returns the owner of the record.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// CanEdit returns false once the invoice was issued or paid.
func (i *Invoice) CanEdit() bool {
	return i.Status != InvoiceStatusIssued && i.Status != InvoiceStatusPaid
}

// TaxConfig is the tax configuration stored with the invoice.
func (i *Invoice) TaxConfig() billing.TaxConfig {
	return billing.TaxConfig{Enabled: i.TaxEnabled, DefaultRate: i.DefaultTaxRate}
}

// LineItems converts the stored rows for the totals calculator.
func (i *Invoice) LineItems() []billing.LineItem {
	out := make([]billing.LineItem, 0, len(i.Items))
	for _, it := range i.Items {
		out = append(out, it.LineItem())
	}
	return out
}

// Totals recomputes the invoice totals from its rows.
func (i *Invoice) Totals() billing.Totals {
	return billing.ComputeInvoiceTotals(i.LineItems(), i.TaxConfig())
}

// Snapshot stores t in TotalsSnapshot.
func (i *Invoice) Snapshot(t billing.Totals) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	i.TotalsSnapshot = datatypes.JSON(b)
	return nil
}

// InvoiceItem represents a line item on an invoice.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`
	Position  int  `gorm:"default:0" json:"position"`

	Description string  `gorm:"size:500;not null" json:"description"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	Unit        string  `gorm:"size:50" json:"unit"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	// LineTotal is stored as entered and is authoritative for totals.
	LineTotal float64  `gorm:"not null" json:"line_total"`
	TaxRate   *float64 `json:"tax_rate,omitempty"`
}

// LineItem converts the row for the totals calculator.
func (it InvoiceItem) LineItem() billing.LineItem {
	return billing.LineItem{
		Description: it.Description,
		Quantity:    it.Quantity,
		Unit:        it.Unit,
		UnitPrice:   it.UnitPrice,
		LineTotal:   it.LineTotal,
		TaxRate:     it.TaxRate,
	}
}
