package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-faktury/auth"
	"github.com/diewo77/go-faktury/internal/handlers"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/registry"
	"github.com/diewo77/go-faktury/internal/services"
	"github.com/diewo77/go-faktury/internal/storage"
	"gorm.io/gorm"
)

// Deps are the collaborators built at bootstrap. Registry and Logos may be
// nil; the matching endpoints then answer 503.
type Deps struct {
	DB       *gorm.DB
	Defaults services.SettingsDefaults
	Registry registry.Registry
	Logos    storage.LogoStore
	// Now overrides the clock of the document services (tests).
	Now func() time.Time
}

// RouterConfig holds the configured handlers and the access rules of the
// application.
type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	SettingsHandler     *handlers.SettingsHandler
	CustomerHandler     *handlers.CustomerHandler
	ProductHandler      *handlers.ProductHandler
	InvoiceHandler      *handlers.InvoiceHandler
	DeliveryNoteHandler *handlers.DeliveryNoteHandler

	Settings      *services.SettingsService
	Invoices      *services.InvoiceService
	DeliveryNotes *services.DeliveryNoteService
}

// NewRouterConfig wires services and handlers together.
//
//	cfg := policy.NewRouterConfig(policy.Deps{DB: db, Defaults: defaults})
//	mux.Handle("GET /invoices", policy.Protect(http.HandlerFunc(cfg.InvoiceHandler.List)))
func NewRouterConfig(d Deps) *RouterConfig {
	settings := services.NewSettingsService(d.DB, d.Defaults)
	invoices := services.NewInvoiceService(d.DB, settings)
	notes := services.NewDeliveryNoteService(d.DB)
	if d.Now != nil {
		invoices.WithClock(d.Now)
		notes.WithClock(d.Now)
	}

	return &RouterConfig{
		AuthHandler:         handlers.NewAuthHandler(d.DB),
		SettingsHandler:     handlers.NewSettingsHandler(settings, d.Logos),
		CustomerHandler:     handlers.NewCustomerHandler(d.DB, d.Registry),
		ProductHandler:      handlers.NewProductHandler(d.DB),
		InvoiceHandler:      handlers.NewInvoiceHandler(invoices, settings, d.Logos),
		DeliveryNoteHandler: handlers.NewDeliveryNoteHandler(notes, settings, d.Logos),
		Settings:            settings,
		Invoices:            invoices,
		DeliveryNotes:       notes,
	}
}

// UserExists is the session verifier: a session of a deleted user is void.
func UserExists(db *gorm.DB) auth.UserVerifier {
	return func(ctx context.Context, uid uint) bool {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	}
}

// Protect requires a signed-in user. Ownership is checked by the handlers.
func Protect(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}
