package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-faktury/auth"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/services"
	"github.com/diewo77/go-faktury/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC) }

type testEnv struct {
	db       *gorm.DB
	settings *services.SettingsService
	invoices *services.InvoiceService
	notes    *services.DeliveryNoteService
	logos    *storage.MemoryStore
	user     models.User
	customer models.Customer
}

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

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	settings := services.NewSettingsService(db, services.SettingsDefaults{Currency: "CZK", DefaultVATRate: 21, DueDays: 14})
	env := &testEnv{
		db:       db,
		settings: settings,
		invoices: services.NewInvoiceService(db, settings).WithClock(fixedNow),
		notes:    services.NewDeliveryNoteService(db).WithClock(fixedNow),
		logos:    storage.NewMemoryStore(),
	}
	env.user = env.seedUser(t, "dodavatel@example.com")
	env.customer = models.Customer{UserID: env.user.ID, Name: "Odběratel s.r.o.", City: "Brno"}
	if err := db.Create(&env.customer).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	return env
}

func (e *testEnv) seedUser(t *testing.T, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x"}
	if err := e.db.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

// saveSettings stores a VAT payer with a valid bank account.
func (e *testEnv) saveSettings(t *testing.T) {
	t.Helper()
	_, err := e.settings.Save(t.Context(), e.user.ID, models.Settings{
		Name:           "Jan Novák",
		TaxID:          "27074358",
		BankAccount:    "19-2000145399/0800",
		Currency:       "CZK",
		VATPayer:       true,
		DefaultVATRate: 21,
		DueDays:        14,
	})
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
}

// call runs h with the given body as user uid. pathValues are name, value pairs.
func call(h http.HandlerFunc, method, target, body string, uid uint, pathValues ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if uid != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), uid))
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

type errorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

// fields returns the validation details; other detail shapes give nil.
func (b errorBody) fields() map[string]string {
	var out map[string]string
	if err := json.Unmarshal(b.Details, &out); err != nil {
		return nil
	}
	return out
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d got %d body=%s", status, w.Code, w.Body.String())
	}
	body := decode[errorBody](t, w)
	if body.Error != code {
		t.Fatalf("error = %q, want %q", body.Error, code)
	}
	return body
}

func id(n uint) string { return fmt.Sprint(n) }
