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

// DeliveryNoteInput is the create/update payload of a delivery note.
type DeliveryNoteInput struct {
	Number     string                     `json:"number"`
	CustomerID uint                       `json:"customer_id"`
	IssueDate  string                     `json:"issue_date"`
	ShowPrices bool                       `json:"show_prices"`
	Notes      string                     `json:"notes"`
	Items      []billing.DeliveryNoteItem `json:"items"`
}

type DeliveryNoteService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDeliveryNoteService(db *gorm.DB) *DeliveryNoteService {
	return &DeliveryNoteService{db: db, now: time.Now}
}

// WithClock replaces the clock used for default dates and the fallback year.
func (s *DeliveryNoteService) WithClock(now func() time.Time) *DeliveryNoteService {
	s.now = now
	return s
}

func (s *DeliveryNoteService) List(ctx context.Context, userID uint) ([]models.DeliveryNote, error) {
	var notes []models.DeliveryNote
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Preload("Customer").Preload("Items", orderByPosition).
		Order("issue_date DESC, id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("list delivery notes: %w", err)
	}
	return notes, nil
}

func (s *DeliveryNoteService) Get(ctx context.Context, userID, id uint) (*models.DeliveryNote, error) {
	var note models.DeliveryNote
	err := s.db.WithContext(ctx).
		Preload("Customer").Preload("Items", orderByPosition).
		Where("id = ? AND user_id = ?", id, userID).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *DeliveryNoteService) NextNumber(ctx context.Context, userID uint) (string, error) {
	return nextNumber(ctx, s.db, &models.DeliveryNote{}, userID, s.now().Year())
}

func (s *DeliveryNoteService) Create(ctx context.Context, userID uint, in DeliveryNoteInput) (*models.DeliveryNote, error) {
	note := &models.DeliveryNote{UserID: userID}
	if err := s.apply(ctx, note, in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.assignNumber(ctx, tx, note, in.Number); err != nil {
			return err
		}
		return tx.Create(note).Error
	})
	if err != nil {
		return nil, translateSaveError(err)
	}
	return s.Get(ctx, userID, note.ID)
}

func (s *DeliveryNoteService) Update(ctx context.Context, userID, id uint, in DeliveryNoteInput) (*models.DeliveryNote, error) {
	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, note, in); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.assignNumber(ctx, tx, note, in.Number); err != nil {
			return err
		}
		if err := tx.Where("delivery_note_id = ?", note.ID).Delete(&models.DeliveryNoteItem{}).Error; err != nil {
			return err
		}
		for i := range note.Items {
			note.Items[i].DeliveryNoteID = note.ID
		}
		return tx.Omit("Customer").Save(note).Error
	})
	if err != nil {
		return nil, translateSaveError(err)
	}
	return s.Get(ctx, userID, note.ID)
}

func (s *DeliveryNoteService) Delete(ctx context.Context, userID, id uint) error {
	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(note).Error
}

// Totals recomputes the totals of a stored delivery note.
func (s *DeliveryNoteService) Totals(note *models.DeliveryNote) billing.DeliveryNoteTotals {
	return note.Totals()
}

// Preview computes totals for unsaved rows.
func (s *DeliveryNoteService) Preview(items []billing.DeliveryNoteItem, showPrices bool) billing.DeliveryNoteTotals {
	return billing.ComputeDeliveryNoteTotals(items, showPrices)
}

func (s *DeliveryNoteService) apply(ctx context.Context, note *models.DeliveryNote, in DeliveryNoteInput) error {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	v := make(validation.Violations)
	if in.CustomerID == 0 {
		v["customer_id"] = "required"
	} else if _, err := ownedCustomer(ctx, s.db, note.UserID, in.CustomerID); errors.Is(err, ErrNotFound) {
		v["customer_id"] = "not_found"
	} else if err != nil {
		return err
	}
	issue := validation.Date("issue_date", in.IssueDate, today, v)

	if len(in.Items) == 0 {
		v["items"] = "required"
	}
	items := make([]models.DeliveryNoteItem, 0, len(in.Items))
	for i, it := range in.Items {
		validation.Required(validation.Indexed("items", i, "description"), it.Description, v)
		if it.TaxRate != nil {
			validation.RangeFloat(validation.Indexed("items", i, "tax_rate"), *it.TaxRate, 0, 100, v)
		}
		items = append(items, models.DeliveryNoteItem{
			Position:    i,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Price:       billing.LocaleDecimal(strings.TrimSpace(string(it.Price))),
			TaxRate:     it.TaxRate,
		})
	}
	if err := v.Err(); err != nil {
		return err
	}

	note.CustomerID = in.CustomerID
	note.Customer = nil
	note.IssueDate = issue
	note.ShowPrices = in.ShowPrices
	note.Notes = in.Notes
	note.Items = items
	return note.Snapshot(note.Totals())
}

func (s *DeliveryNoteService) assignNumber(ctx context.Context, tx *gorm.DB, note *models.DeliveryNote, requested string) error {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		if note.Number != "" {
			return nil
		}
		n, err := nextNumber(ctx, tx, &models.DeliveryNote{}, note.UserID, note.IssueDate.Year())
		if err != nil {
			return err
		}
		note.Number = n
		return nil
	}
	taken, err := numberTaken(ctx, tx, &models.DeliveryNote{}, note.UserID, requested, note.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateNumber
	}
	note.Number = requested
	return nil
}
