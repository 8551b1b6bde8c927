package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Customer is a company or person documents are issued to.
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Street      string `gorm:"size:255" json:"street,omitempty"`
	HouseNumber string `gorm:"size:50" json:"house_number,omitempty"`
	PostalCode  string `gorm:"size:20" json:"postal_code,omitempty"`
	City        string `gorm:"size:100" json:"city,omitempty"`
	TaxID       string `gorm:"size:20;index" json:"tax_id,omitempty"`
	VATID       string `gorm:"size:20" json:"vat_id,omitempty"`
	Email       string `gorm:"size:255" json:"email,omitempty"`
	Phone       string `gorm:"size:50" json:"phone,omitempty"`
}

// GetUserID returns the owner of the record.
func (c *Customer) GetUserID() uint {
	return c.UserID
}

// Party returns the customer block of a printed document.
func (c *Customer) Party() Party {
	return Party{
		Name:        c.Name,
		Street:      c.Street,
		HouseNumber: c.HouseNumber,
		PostalCode:  c.PostalCode,
		City:        c.City,
		TaxID:       c.TaxID,
		VATID:       c.VATID,
		Email:       c.Email,
		Phone:       c.Phone,
	}
}

// Party is a name and address block as printed on documents.
type Party struct {
	Name        string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
	TaxID       string
	VATID       string
	Email       string
	Phone       string
}

// AddressLines returns "Street 12" and "110 00 Praha", skipping empty lines.
func (p Party) AddressLines() []string {
	var lines []string
	if l := strings.TrimSpace(p.Street + " " + p.HouseNumber); l != "" {
		lines = append(lines, l)
	}
	if l := strings.TrimSpace(p.PostalCode + " " + p.City); l != "" {
		lines = append(lines, l)
	}
	return lines
}

// FullAddress joins AddressLines with newlines.
func (p Party) FullAddress() string {
	return strings.Join(p.AddressLines(), "\n")
}
