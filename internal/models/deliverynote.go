package models

import (
	"encoding/json"
	"time"

	"github.com/diewo77/go-faktury/internal/billing"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DeliveryNote (dodací list) accompanies delivered goods. Prices are optional.
type DeliveryNote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint   `gorm:"not null;uniqueIndex:idx_delivery_notes_user_number" json:"user_id"`
	Number string `gorm:"size:50;not null;uniqueIndex:idx_delivery_notes_user_number" json:"number"`

	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	IssueDate  time.Time `gorm:"not null" json:"issue_date"`
	ShowPrices bool      `json:"show_prices"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`

	Items []DeliveryNoteItem `gorm:"foreignKey:DeliveryNoteID;constraint:OnDelete:CASCADE" json:"items"`

	TotalsSnapshot datatypes.JSON `json:"totals,omitempty"`
}

// GetUserID returns the owner of the record.
func (d *DeliveryNote) GetUserID() uint {
	return d.UserID
}

// LineItems converts the stored rows for the totals calculator.
func (d *DeliveryNote) LineItems() []billing.DeliveryNoteItem {
	out := make([]billing.DeliveryNoteItem, 0, len(d.Items))
	for _, it := range d.Items {
		out = append(out, it.LineItem())
	}
	return out
}

// Totals recomputes the delivery note totals from its rows.
func (d *DeliveryNote) Totals() billing.DeliveryNoteTotals {
	return billing.ComputeDeliveryNoteTotals(d.LineItems(), d.ShowPrices)
}

// Snapshot stores t in TotalsSnapshot.
func (d *DeliveryNote) Snapshot(t billing.DeliveryNoteTotals) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	d.TotalsSnapshot = datatypes.JSON(b)
	return nil
}

// DeliveryNoteItem is one delivered row. Price keeps the text as typed.
type DeliveryNoteItem struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	DeliveryNoteID uint `gorm:"index;not null" json:"delivery_note_id"`
	Position       int  `gorm:"default:0" json:"position"`

	Description string                `gorm:"size:500;not null" json:"description"`
	Quantity    float64               `gorm:"not null" json:"quantity"`
	Unit        string                `gorm:"size:50" json:"unit"`
	Price       billing.LocaleDecimal `gorm:"size:50" json:"price"`
	TaxRate     *float64              `json:"tax_rate,omitempty"`
}

// LineItem converts the row for the totals calculator.
func (it DeliveryNoteItem) LineItem() billing.DeliveryNoteItem {
	return billing.DeliveryNoteItem{
		Description: it.Description,
		Quantity:    it.Quantity,
		Unit:        it.Unit,
		Price:       it.Price,
		TaxRate:     it.TaxRate,
	}
}
