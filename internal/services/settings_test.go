package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/validation"
)

func TestSettingsDefaultsAndSave(t *testing.T) {
	db := setupTestDB(t)
	settings, _, _ := newServices(db)
	ctx := context.Background()
	user, _ := seedUser(t, db, "settings@example.cz")

	st, err := settings.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if st.ID != 0 || st.Currency != "CZK" || st.DefaultVATRate != 21 || st.DueDays != 14 || !st.VATPayer {
		t.Fatalf("unexpected defaults: %+v", st)
	}

	_, err = settings.Save(ctx, user.ID, models.Settings{
		Name:           "Dodavatel",
		BankAccount:    "19-2000145398/0800",
		TaxID:          "27074359",
		DefaultVATRate: 120,
		Currency:       "KORUNA",
	})
	var v validation.Violations
	if !errors.As(err, &v) {
		t.Fatalf("expected violations, got %v", err)
	}
	for field, code := range map[string]string{
		"bank_account":     "invalid_bank_account",
		"tax_id":           "invalid_ico",
		"default_vat_rate": "out_of_range",
		"currency":         "invalid_currency",
	} {
		if v[field] != code {
			t.Errorf("%s = %q, want %q", field, v[field], code)
		}
	}

	saved, err := settings.Save(ctx, user.ID, models.Settings{
		Name:           "Dodavatel",
		BankAccount:    " 19-2000145399/0800 ",
		TaxID:          "27074358",
		DefaultVATRate: 12,
		DueDays:        30,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == 0 || saved.BankAccount != "19-2000145399/0800" || saved.Currency != "CZK" {
		t.Fatalf("unexpected saved settings: %+v", saved)
	}

	if err := settings.SetLogo(ctx, user.ID, "logos/1/abc.png"); err != nil {
		t.Fatalf("set logo: %v", err)
	}
	again, err := settings.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.LogoKey != "logos/1/abc.png" || again.DueDays != 30 || again.ID != saved.ID {
		t.Fatalf("reloaded settings = %+v", again)
	}
}
