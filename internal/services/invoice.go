package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-faktury/internal/billing"
	"github.com/diewo77/go-faktury/internal/models"
	"github.com/diewo77/go-faktury/validation"
	"gorm.io/gorm"
)

// InvoiceItemInput is an invoice row as sent by the client. A missing
// LineTotal defaults to Quantity * UnitPrice.
type InvoiceItemInput struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	UnitPrice   float64  `json:"unit_price"`
	LineTotal   *float64 `json:"line_total,omitempty"`
	TaxRate     *float64 `json:"tax_rate,omitempty"`
}

func (in InvoiceItemInput) lineTotal() float64 {
	if in.LineTotal != nil {
		return *in.LineTotal
	}
	return in.Quantity * in.UnitPrice
}

// LineItem converts the row for the totals calculator.
func (in InvoiceItemInput) LineItem() billing.LineItem {
	return billing.LineItem{
		Description: in.Description,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		UnitPrice:   in.UnitPrice,
		LineTotal:   in.lineTotal(),
		TaxRate:     in.TaxRate,
	}
}

// InvoiceInput is the create/update payload. Empty fields fall back to the
// user's settings; a blank Number gets the next one in sequence.
type InvoiceInput struct {
	Number         string             `json:"number"`
	CustomerID     uint               `json:"customer_id"`
	IssueDate      string             `json:"issue_date"`
	TaxableDate    string             `json:"taxable_date"`
	DueDate        string             `json:"due_date"`
	PaymentMethod  string             `json:"payment_method"`
	Currency       string             `json:"currency"`
	TaxEnabled     *bool              `json:"tax_enabled,omitempty"`
	DefaultTaxRate *float64           `json:"default_tax_rate,omitempty"`
	Notes          string             `json:"notes"`
	Items          []InvoiceItemInput `json:"items"`
}

var paymentMethods = []string{
	string(billing.PaymentBankTransfer),
	string(billing.PaymentCash),
	string(billing.PaymentCard),
}

type InvoiceService struct {
	db       *gorm.DB
	settings *SettingsService
	now      func() time.Time
}

func NewInvoiceService(db *gorm.DB, settings *SettingsService) *InvoiceService {
	return &InvoiceService{db: db, settings: settings, now: time.Now}
}

// WithClock replaces the clock used for default dates and the fallback year.
func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	s.now = now
	return s
}

// List returns the user's invoices, newest first. An empty status lists all.
func (s *InvoiceService) List(ctx context.Context, userID uint, status models.InvoiceStatus) ([]models.Invoice, error) {
	var invoices []models.Invoice
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Preload("Customer").Preload("Items", orderByPosition).
		Order("issue_date DESC, id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// Get loads one invoice with its customer and rows.
func (s *InvoiceService) Get(ctx context.Context, userID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").Preload("Items", orderByPosition).
		Where("id = ? AND user_id = ?", id, userID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// NextNumber previews the number the next invoice will get.
func (s *InvoiceService) NextNumber(ctx context.Context, userID uint) (string, error) {
	return nextNumber(ctx, s.db, &models.Invoice{}, userID, s.now().Year())
}

// Create validates and stores a new draft invoice.
func (s *InvoiceService) Create(ctx context.Context, userID uint, in InvoiceInput) (*models.Invoice, error) {
	inv := &models.Invoice{UserID: userID, Status: models.InvoiceStatusDraft}
	if err := s.apply(ctx, inv, in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.assignNumber(ctx, tx, inv, in.Number); err != nil {
			return err
		}
		return tx.Create(inv).Error
	})
	if err != nil {
		return nil, translateSaveError(err)
	}
	return s.Get(ctx, userID, inv.ID)
}

// Update replaces the header and rows of an editable invoice.
func (s *InvoiceService) Update(ctx context.Context, userID, id uint, in InvoiceInput) (*models.Invoice, error) {
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !inv.CanEdit() {
		return nil, ErrNotEditable
	}
	if err := s.apply(ctx, inv, in); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.assignNumber(ctx, tx, inv, in.Number); err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		for i := range inv.Items {
			inv.Items[i].ID = 0
			inv.Items[i].InvoiceID = inv.ID
		}
		return tx.Omit("Customer").Save(inv).Error
	})
	if err != nil {
		return nil, translateSaveError(err)
	}
	return s.Get(ctx, userID, inv.ID)
}

// Delete soft-deletes an editable invoice.
func (s *InvoiceService) Delete(ctx context.Context, userID, id uint) error {
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if !inv.CanEdit() {
		return ErrNotEditable
	}
	return s.db.WithContext(ctx).Delete(inv).Error
}

// SetStatus moves an invoice to status.
func (s *InvoiceService) SetStatus(ctx context.Context, userID, id uint, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, validation.Violations{"status": "invalid_choice"}
	}
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(inv).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	inv.Status = status
	return inv, nil
}

// Totals recomputes the totals of a stored invoice.
func (s *InvoiceService) Totals(inv *models.Invoice) billing.Totals {
	return inv.Totals()
}

// Preview computes totals for unsaved rows.
func (s *InvoiceService) Preview(items []InvoiceItemInput, cfg billing.TaxConfig) billing.Totals {
	lines := make([]billing.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.LineItem())
	}
	return billing.ComputeInvoiceTotals(lines, cfg)
}

// PaymentCode builds the SPD payload for the QR payment code of inv.
func (s *InvoiceService) PaymentCode(inv *models.Invoice, st *models.Settings) (string, bool) {
	return billing.BuildPaymentDescriptor(billing.PaymentRequest{
		IBAN:           st.IBAN(),
		Amount:         inv.Totals().Total,
		Currency:       inv.Currency,
		DocumentNumber: inv.Number,
		Message:        "Faktura " + inv.Number,
		Method:         inv.PaymentMethod,
	})
}

// Revenue sums the totals of issued and paid invoices.
func (s *InvoiceService) Revenue(ctx context.Context, userID uint) (float64, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND status IN ?", userID, []models.InvoiceStatus{models.InvoiceStatusIssued, models.InvoiceStatusPaid}).
		Find(&invoices).Error
	if err != nil {
		return 0, fmt.Errorf("load revenue: %w", err)
	}
	var sum float64
	for i := range invoices {
		sum += invoices[i].Totals().Total
	}
	return sum, nil
}

// apply validates in and copies it onto inv, recomputing the snapshot.
func (s *InvoiceService) apply(ctx context.Context, inv *models.Invoice, in InvoiceInput) error {
	st, err := s.settings.Get(ctx, inv.UserID)
	if err != nil {
		return err
	}
	today := s.now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	v := make(validation.Violations)
	if in.CustomerID == 0 {
		v["customer_id"] = "required"
	} else if _, err := ownedCustomer(ctx, s.db, inv.UserID, in.CustomerID); errors.Is(err, ErrNotFound) {
		v["customer_id"] = "not_found"
	} else if err != nil {
		return err
	}

	issue := validation.Date("issue_date", in.IssueDate, today, v)
	taxable := validation.Date("taxable_date", in.TaxableDate, issue, v)
	due := validation.Date("due_date", in.DueDate, issue.AddDate(0, 0, st.DueDays), v)
	if due.Before(issue) {
		v["due_date"] = "before_issue_date"
	}

	method := in.PaymentMethod
	if method == "" {
		method = string(billing.PaymentBankTransfer)
	}
	validation.OneOf("payment_method", method, paymentMethods, v)

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = st.Currency
	}

	cfg := st.TaxConfig()
	if in.TaxEnabled != nil {
		cfg.Enabled = *in.TaxEnabled
	}
	if in.DefaultTaxRate != nil {
		cfg.DefaultRate = *in.DefaultTaxRate
	}
	validation.RangeFloat("default_tax_rate", cfg.DefaultRate, 0, 100, v)

	if len(in.Items) == 0 {
		v["items"] = "required"
	}
	items := make([]models.InvoiceItem, 0, len(in.Items))
	for i, it := range in.Items {
		validation.Required(validation.Indexed("items", i, "description"), it.Description, v)
		if it.TaxRate != nil {
			validation.RangeFloat(validation.Indexed("items", i, "tax_rate"), *it.TaxRate, 0, 100, v)
		}
		// a non-finite line total cannot be encoded as JSON
		validation.Finite(validation.Indexed("items", i, "line_total"), it.lineTotal(), v)
		items = append(items, models.InvoiceItem{
			Position:    i,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.lineTotal(),
			TaxRate:     it.TaxRate,
		})
	}
	if err := v.Err(); err != nil {
		return err
	}

	inv.CustomerID = in.CustomerID
	inv.Customer = nil
	inv.IssueDate = issue
	inv.TaxableDate = taxable
	inv.DueDate = due
	inv.PaymentMethod = billing.PaymentMethod(method)
	inv.Currency = currency
	inv.TaxEnabled = cfg.Enabled
	inv.DefaultTaxRate = cfg.DefaultRate
	inv.Notes = in.Notes
	inv.Items = items
	return inv.Snapshot(inv.Totals())
}

// assignNumber sets the requested number, or the next free one when blank.
func (s *InvoiceService) assignNumber(ctx context.Context, tx *gorm.DB, inv *models.Invoice, requested string) error {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		if inv.Number != "" {
			return nil
		}
		n, err := nextNumber(ctx, tx, &models.Invoice{}, inv.UserID, inv.IssueDate.Year())
		if err != nil {
			return err
		}
		inv.Number = n
		return nil
	}
	taken, err := numberTaken(ctx, tx, &models.Invoice{}, inv.UserID, requested, inv.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateNumber
	}
	inv.Number = requested
	return nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
