package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalogue entry used to prefill document rows.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	Name      string  `gorm:"size:255;not null" json:"name"`
	Unit      string  `gorm:"size:50" json:"unit,omitempty"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	// TaxRate in percent; nil means the document default applies.
	TaxRate *float64 `json:"tax_rate,omitempty"`
}

// GetUserID returns the owner of the record.
func (p *Product) GetUserID() uint {
	return p.UserID
}

// EffectiveTaxRate returns the product rate or defaultRate when unset.
func (p *Product) EffectiveTaxRate(defaultRate float64) float64 {
	if p.TaxRate != nil {
		return *p.TaxRate
	}
	return defaultRate
}

// PriceWithVAT is the unit price including VAT at the effective rate.
func (p *Product) PriceWithVAT(defaultRate float64) float64 {
	return p.UnitPrice * (1 + p.EffectiveTaxRate(defaultRate)/100)
}
