// Package storage provides the data persistence layer for spendlog: the SQLite
// gateway, the schema migration ladder and the category, budget and expense stores.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %w: %s", common.ErrValidation, ErrEmptyString, paramName)
	}
	return nil
}

// validateAmount ensures a monetary amount is strictly positive.
func validateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", common.ErrValidation, amount)
	}
	return nil
}

// validatePage ensures pagination arguments are usable.
func validatePage(limit, offset int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", common.ErrValidation, limit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset cannot be negative, got %d", common.ErrValidation, offset)
	}
	return nil
}

// validateMonth ensures month is a calendar month.
func validateMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("%w: month must be between 1 and 12, got %d", common.ErrValidation, month)
	}
	return nil
}

// validateCategory validates a category before insertion.
func validateCategory(cat *model.Category) error {
	if err := validateString(cat.Name, "name"); err != nil {
		return err
	}
	if err := validateString(cat.ID, "id"); err != nil {
		return err
	}
	if !strings.ContainsFunc(cat.ID, isSlugAlnum) {
		return fmt.Errorf("%w: category id %q has no letters or digits", common.ErrValidation, cat.ID)
	}
	return nil
}

func isSlugAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// validateExpenseFields validates the fields shared by create and update.
func validateExpenseFields(amount int64, categoryID string, occurredAt time.Time) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return err
	}
	if occurredAt.IsZero() {
		return fmt.Errorf("%w: missing occurrence date", common.ErrValidation)
	}
	return nil
}
