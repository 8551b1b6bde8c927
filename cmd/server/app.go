package main

import (
	"net/http"

	"github.com/diewo77/go-faktury/auth"
	"github.com/diewo77/go-faktury/httpx"
	"github.com/diewo77/go-faktury/internal/middleware"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/internal/policy"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	routerCfg *policy.RouterConfig
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, routerCfg *policy.RouterConfig) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	app.handler = middleware.Recover(middleware.Logging(auth.Middleware(middleware.Prefs(app.mux))))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) protected(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, policy.Protect(h))
}

func (a *App) setupRoutes() {
	// Public routes
	ah := a.routerCfg.AuthHandler
	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.HandleFunc("POST /signup", ah.Signup)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	a.protected("GET /me", ah.Me)
	a.protected("GET /dashboard", a.dashboard)

	// Supplier settings
	sh := a.routerCfg.SettingsHandler
	a.protected("GET /settings", sh.Get)
	a.protected("PUT /settings", sh.Update)
	a.protected("POST /settings/logo", sh.UploadLogo)
	a.protected("GET /settings/logo", sh.Logo)

	// Customers and the business register
	ch := a.routerCfg.CustomerHandler
	a.protected("GET /customers", ch.List)
	a.protected("POST /customers", ch.Create)
	a.protected("GET /customers/{id}", ch.Get)
	a.protected("PUT /customers/{id}", ch.Update)
	a.protected("DELETE /customers/{id}", ch.Delete)
	a.protected("GET /registry/{ico}", ch.Lookup)

	ph := a.routerCfg.ProductHandler
	a.protected("GET /products", ph.List)
	a.protected("POST /products", ph.Create)
	a.protected("GET /products/{id}", ph.Get)
	a.protected("PUT /products/{id}", ph.Update)
	a.protected("DELETE /products/{id}", ph.Delete)

	// Invoices
	ih := a.routerCfg.InvoiceHandler
	a.protected("GET /invoices", ih.List)
	a.protected("POST /invoices", ih.Create)
	a.protected("GET /invoices/next-number", ih.NextNumber)
	a.protected("POST /invoices/preview", ih.Preview)
	a.protected("POST /invoices/export", ih.Export)
	a.protected("GET /invoices/{id}", ih.Get)
	a.protected("PUT /invoices/{id}", ih.Update)
	a.protected("DELETE /invoices/{id}", ih.Delete)
	a.protected("POST /invoices/{id}/status", ih.SetStatus)
	a.protected("GET /invoices/{id}/pdf", ih.PDF)
	a.protected("GET /invoices/{id}/qr.png", ih.QR)
	a.protected("GET /invoices/{id}/print", ih.Print)

	// Delivery notes
	dh := a.routerCfg.DeliveryNoteHandler
	a.protected("GET /delivery-notes", dh.List)
	a.protected("POST /delivery-notes", dh.Create)
	a.protected("GET /delivery-notes/next-number", dh.NextNumber)
	a.protected("POST /delivery-notes/preview", dh.Preview)
	a.protected("GET /delivery-notes/{id}", dh.Get)
	a.protected("PUT /delivery-notes/{id}", dh.Update)
	a.protected("DELETE /delivery-notes/{id}", dh.Delete)
	a.protected("GET /delivery-notes/{id}/pdf", dh.PDF)
	a.protected("GET /delivery-notes/{id}/print", dh.Print)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type dashboardStats struct {
	Customers     int64            `json:"customers"`
	Products      int64            `json:"products"`
	Invoices      int64            `json:"invoices"`
	DeliveryNotes int64            `json:"delivery_notes"`
	Revenue       float64          `json:"revenue"`
	Currency      string           `json:"currency"`
	Recent        []models.Invoice `json:"recent_invoices"`
}

// dashboard summarises the user's records; revenue counts issued and paid
// invoices.
func (a *App) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	db := a.db.WithContext(r.Context())

	var stats dashboardStats
	for model, dst := range map[any]*int64{
		&models.Customer{}:     &stats.Customers,
		&models.Product{}:      &stats.Products,
		&models.Invoice{}:      &stats.Invoices,
		&models.DeliveryNote{}: &stats.DeliveryNotes,
	} {
		if err := db.Model(model).Where("user_id = ?", userID).Count(dst).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			return
		}
	}

	revenue, err := a.routerCfg.Invoices.Revenue(r.Context(), userID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	stats.Revenue = revenue

	st, err := a.routerCfg.Settings.Get(r.Context(), userID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	stats.Currency = st.Currency

	stats.Recent = []models.Invoice{}
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Limit(5).Find(&stats.Recent).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
