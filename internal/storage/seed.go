package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/model"
)

// SeedCategories inserts the default system categories when the categories
// table is completely empty. It returns the number of rows inserted, which is
// zero on every run after the first.
func (s *SQLiteStorage) SeedCategories(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
			return common.NewStorageError("count categories", err)
		}
		if count > 0 {
			return nil
		}

		createdAt := toMillis(s.now())
		for _, cat := range model.DefaultCategories() {
			if _, err := run(ctx, tx,
				`INSERT INTO categories (id, name, color, icon, is_system, created_at) VALUES (?, ?, ?, ?, 1, ?)`,
				cat.ID, cat.Name, cat.Color, cat.Icon, createdAt); err != nil {
				return fmt.Errorf("failed to seed category %q: %w", cat.ID, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		slog.Info("Seeded default categories", "count", inserted)
	}
	return inserted, nil
}
