package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/model"
	"github.com/Veraticus/spendlog/internal/service"
)

// BudgetStore manages the monthly spending ceiling of each category.
type BudgetStore struct {
	s *SQLiteStorage
}

// Budgets returns the budget store backed by this gateway.
func (s *SQLiteStorage) Budgets() service.BudgetRepository {
	return &BudgetStore{s: s}
}

func scanBudget(row RowScanner) (model.Budget, error) {
	var b model.Budget
	err := row.Scan(&b.CategoryID, &b.Amount)
	return b, err
}

// List returns every budget ordered by category id.
func (b *BudgetStore) List(ctx context.Context) ([]model.Budget, error) {
	if err := b.s.ensureReady(ctx); err != nil {
		return nil, err
	}

	budgets, err := Query(ctx, b.s, scanBudget,
		`SELECT category_id, amount FROM budgets ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// Get returns the budget for categoryID, or nil when none is set.
func (b *BudgetStore) Get(ctx context.Context, categoryID string) (*model.Budget, error) {
	if err := b.s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return nil, err
	}

	db, err := b.s.conn()
	if err != nil {
		return nil, err
	}

	budget, err := scanBudget(db.QueryRowContext(ctx,
		`SELECT category_id, amount FROM budgets WHERE category_id = ?`, categoryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewStorageError("get budget", err)
	}
	return &budget, nil
}

// Set creates or replaces the budget for categoryID.
func (b *BudgetStore) Set(ctx context.Context, categoryID string, amount int64) error {
	if err := b.s.ensureReady(ctx); err != nil {
		return err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}

	return b.s.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := categoryExists(ctx, tx, categoryID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: category %q", common.ErrNotFound, categoryID)
		}

		if _, err := run(ctx, tx, `
			INSERT INTO budgets (category_id, amount) VALUES (?, ?)
			ON CONFLICT(category_id) DO UPDATE SET amount = excluded.amount`,
			categoryID, amount); err != nil {
			return fmt.Errorf("failed to set budget for %q: %w", categoryID, err)
		}

		slog.Debug("set budget", "category", categoryID, "amount", amount)
		return nil
	})
}

// Remove deletes the budget for categoryID. Removing an absent budget is a no-op.
func (b *BudgetStore) Remove(ctx context.Context, categoryID string) error {
	if err := b.s.ensureReady(ctx); err != nil {
		return err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return err
	}

	if _, err := b.s.Run(ctx, `DELETE FROM budgets WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("failed to remove budget for %q: %w", categoryID, err)
	}
	return nil
}

// Clear deletes every budget.
func (b *BudgetStore) Clear(ctx context.Context) error {
	if err := b.s.ensureReady(ctx); err != nil {
		return err
	}

	n, err := b.s.Run(ctx, `DELETE FROM budgets`)
	if err != nil {
		return fmt.Errorf("failed to clear budgets: %w", err)
	}

	slog.Info("Cleared budgets", "count", n)
	return nil
}
