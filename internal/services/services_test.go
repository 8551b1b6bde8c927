package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/diewo77/go-faktury/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC) }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) (models.User, models.Customer) {
	t.Helper()
	user := models.User{Email: email, Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	customer := models.Customer{UserID: user.ID, Name: "Odběratel s.r.o.", City: "Brno"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	return user, customer
}

func newServices(db *gorm.DB) (*SettingsService, *InvoiceService, *DeliveryNoteService) {
	settings := NewSettingsService(db, SettingsDefaults{Currency: "CZK", DefaultVATRate: 21, DueDays: 14})
	invoices := NewInvoiceService(db, settings).WithClock(fixedNow)
	notes := NewDeliveryNoteService(db).WithClock(fixedNow)
	return settings, invoices, notes
}

func f(v float64) *float64 { return &v }
