package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-faktury/internal/billing"
	"github.com/diewo77/go-faktury/internal/models"
	"gorm.io/gorm"
)

// existingNumbers returns every number the user ever issued for model, in
// insertion order. Soft-deleted documents are included so numbers are never
// handed out twice.
func existingNumbers(ctx context.Context, db *gorm.DB, model any, userID uint) ([]string, error) {
	var numbers []string
	err := db.WithContext(ctx).Unscoped().Model(model).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("number", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("load document numbers: %w", err)
	}
	return numbers, nil
}

func nextNumber(ctx context.Context, db *gorm.DB, model any, userID uint, year int) (string, error) {
	numbers, err := existingNumbers(ctx, db, model, userID)
	if err != nil {
		return "", err
	}
	return billing.NextNumber(numbers, year), nil
}

// numberTaken reports whether another document of the user already uses number.
func numberTaken(ctx context.Context, db *gorm.DB, model any, userID uint, number string, exceptID uint) (bool, error) {
	var count int64
	q := db.WithContext(ctx).Unscoped().Model(model).Where("user_id = ? AND number = ?", userID, number)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ownedCustomer loads a customer of the user.
func ownedCustomer(ctx context.Context, db *gorm.DB, userID, customerID uint) (*models.Customer, error) {
	var c models.Customer
	err := db.WithContext(ctx).Where("id = ? AND user_id = ?", customerID, userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func translateSaveError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateNumber
	}
	return err
}
