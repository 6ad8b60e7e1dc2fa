package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spendlog/internal/model"
)

// ClearExpenses deletes every expense. Categories and budgets are kept.
func (s *SQLiteStorage) ClearExpenses(ctx context.Context) (int64, error) {
	if err := s.ensureReady(ctx); err != nil {
		return 0, err
	}

	var deleted int64
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := run(ctx, tx, `DELETE FROM expenses`)
		if err != nil {
			return fmt.Errorf("failed to clear expenses: %w", err)
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Cleared expenses", "count", deleted)
	return deleted, nil
}

// ClearAllData deletes every expense, every budget and every user category
// in one transaction. System categories survive. Nothing is removed unless
// all three deletes succeed.
func (s *SQLiteStorage) ClearAllData(ctx context.Context) (model.ClearStats, error) {
	if err := s.ensureReady(ctx); err != nil {
		return model.ClearStats{}, err
	}

	var stats model.ClearStats
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		steps := []struct {
			count *int64
			table string
			stmt  string
		}{
			{table: "expenses", stmt: `DELETE FROM expenses`, count: &stats.Expenses},
			{table: "budgets", stmt: `DELETE FROM budgets`, count: &stats.Budgets},
			{table: "categories", stmt: `DELETE FROM categories WHERE is_system = 0`, count: &stats.Categories},
		}
		for _, step := range steps {
			n, err := run(ctx, tx, step.stmt)
			if err != nil {
				return fmt.Errorf("failed to clear %s: %w", step.table, err)
			}
			*step.count = n
		}
		return nil
	})
	if err != nil {
		return model.ClearStats{}, err
	}

	slog.Info("Cleared all data",
		"expenses", stats.Expenses,
		"budgets", stats.Budgets,
		"categories", stats.Categories)
	return stats, nil
}
