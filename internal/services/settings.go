package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-faktury/internal/billing"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/registry"
	"github.com/diewo77/go-faktury/validation"
	"gorm.io/gorm"
)

// SettingsDefaults seeds the settings of a user who never saved any.
type SettingsDefaults struct {
	Currency       string
	DefaultVATRate float64
	DueDays        int
}

type SettingsService struct {
	db       *gorm.DB
	defaults SettingsDefaults
}

func NewSettingsService(db *gorm.DB, defaults SettingsDefaults) *SettingsService {
	if defaults.Currency == "" {
		defaults.Currency = billing.DefaultCurrency
	}
	return &SettingsService{db: db, defaults: defaults}
}

// Get returns the stored settings or unsaved defaults.
func (s *SettingsService) Get(ctx context.Context, userID uint) (*models.Settings, error) {
	var st models.Settings
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Settings{
			UserID:         userID,
			Currency:       s.defaults.Currency,
			VATPayer:       true,
			DefaultVATRate: s.defaults.DefaultVATRate,
			DueDays:        s.defaults.DueDays,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &st, nil
}

// Save validates and stores the editable fields of in.
func (s *SettingsService) Save(ctx context.Context, userID uint, in models.Settings) (*models.Settings, error) {
	in.BankAccount = strings.TrimSpace(in.BankAccount)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = s.defaults.Currency
	}

	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.BankAccount("bank_account", in.BankAccount, v)
	validation.RangeFloat("default_vat_rate", in.DefaultVATRate, 0, 100, v)
	validation.NonNegativeInt("due_days", in.DueDays, v)
	if len(in.Currency) != 3 {
		v["currency"] = "invalid_currency"
	}
	if in.TaxID != "" && !registry.ValidateICO(in.TaxID) {
		v["tax_id"] = "invalid_ico"
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	st, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	st.Name = in.Name
	st.Street = in.Street
	st.HouseNumber = in.HouseNumber
	st.PostalCode = in.PostalCode
	st.City = in.City
	st.TaxID = in.TaxID
	st.VATID = in.VATID
	st.Email = in.Email
	st.Phone = in.Phone
	st.Website = in.Website
	st.BankAccount = in.BankAccount
	st.Currency = in.Currency
	st.VATPayer = in.VATPayer
	st.DefaultVATRate = in.DefaultVATRate
	st.DueDays = in.DueDays

	if err := s.db.WithContext(ctx).Save(st).Error; err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	return st, nil
}

// SetLogo records the storage key of the uploaded logo.
func (s *SettingsService) SetLogo(ctx context.Context, userID uint, key string) error {
	st, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	st.LogoKey = key
	if err := s.db.WithContext(ctx).Save(st).Error; err != nil {
		return fmt.Errorf("save logo key: %w", err)
	}
	return nil
}
