package models

import (
	"time"

	"github.com/diewo77/go-faktury/internal/billing"
	"gorm.io/gorm"
)

// Settings holds the supplier details printed on every document of a user.
type Settings struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the owner of these settings
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Supplier identity
	Name        string `gorm:"size:255" json:"name"`
	Street      string `gorm:"size:255" json:"street,omitempty"`
	HouseNumber string `gorm:"size:50" json:"house_number,omitempty"`
	PostalCode  string `gorm:"size:20" json:"postal_code,omitempty"`
	City        string `gorm:"size:100" json:"city,omitempty"`
	TaxID       string `gorm:"size:20" json:"tax_id,omitempty"` // IČO
	VATID       string `gorm:"size:20" json:"vat_id,omitempty"` // DIČ
	Email       string `gorm:"size:255" json:"email,omitempty"`
	Phone       string `gorm:"size:50" json:"phone,omitempty"`
	Website     string `gorm:"size:255" json:"website,omitempty"`

	// Payment & tax
	BankAccount    string  `gorm:"size:50" json:"bank_account,omitempty"`
	Currency       string  `gorm:"size:3" json:"currency"`
	VATPayer       bool    `json:"vat_payer"`
	DefaultVATRate float64 `json:"default_vat_rate"`
	DueDays        int     `json:"due_days"`

	// Branding
	LogoKey string `gorm:"size:255" json:"logo_key,omitempty"`
}

// GetUserID returns the owner of the record.
func (s *Settings) GetUserID() uint {
	return s.UserID
}

// TaxConfig is the tax configuration new documents start from.
func (s *Settings) TaxConfig() billing.TaxConfig {
	return billing.TaxConfig{Enabled: s.VATPayer, DefaultRate: s.DefaultVATRate}
}

// IBAN converts the configured bank account, empty when it does not validate.
func (s *Settings) IBAN() string {
	if s.BankAccount == "" || !billing.ValidateAccount(s.BankAccount) {
		return ""
	}
	iban := billing.ToIBAN(s.BankAccount)
	if !billing.ValidIBAN(iban) {
		return ""
	}
	return iban
}

// Party returns the supplier block of a printed document.
func (s *Settings) Party() Party {
	return Party{
		Name:        s.Name,
		Street:      s.Street,
		HouseNumber: s.HouseNumber,
		PostalCode:  s.PostalCode,
		City:        s.City,
		TaxID:       s.TaxID,
		VATID:       s.VATID,
		Email:       s.Email,
		Phone:       s.Phone,
	}
}
