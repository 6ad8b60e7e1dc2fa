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

const categoryColumns = `id, name, color, icon, is_system, created_at`

// CategoryStore reads and writes expense categories.
type CategoryStore struct {
	s *SQLiteStorage
}

// Categories returns the category store backed by this gateway.
func (s *SQLiteStorage) Categories() service.CategoryRepository {
	return &CategoryStore{s: s}
}

func (c *CategoryStore) scan(row RowScanner) (model.Category, error) {
	var (
		cat       model.Category
		icon      sql.NullString
		createdAt int64
	)
	if err := row.Scan(&cat.ID, &cat.Name, &cat.Color, &icon, &cat.IsSystem, &createdAt); err != nil {
		return model.Category{}, err
	}
	cat.Icon = model.DefaultCategoryIcon
	if icon.Valid && icon.String != "" {
		cat.Icon = icon.String
	}
	cat.CreatedAt = c.s.fromMillis(createdAt)
	return cat, nil
}

// List returns all categories ordered by name.
func (c *CategoryStore) List(ctx context.Context) ([]model.Category, error) {
	if err := c.s.ensureReady(ctx); err != nil {
		return nil, err
	}

	categories, err := Query(ctx, c.s, c.scan,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// Get returns the category with the given id, or ErrNotFound.
func (c *CategoryStore) Get(ctx context.Context, id string) (*model.Category, error) {
	if err := c.s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	db, err := c.s.conn()
	if err != nil {
		return nil, err
	}

	cat, err := c.scan(db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, common.NewStorageError("get category", err)
	}
	return &cat, nil
}

// Create inserts a new category. A collision on id or name fails with
// ErrDuplicate.
func (c *CategoryStore) Create(ctx context.Context, cat model.Category) error {
	if err := c.s.ensureReady(ctx); err != nil {
		return err
	}
	if err := validateCategory(&cat); err != nil {
		return err
	}

	if cat.Icon == "" {
		cat.Icon = model.DefaultCategoryIcon
	}
	if cat.Color == "" {
		cat.Color = model.CategoryColor(cat.Name)
	}
	if cat.CreatedAt.IsZero() {
		cat.CreatedAt = c.s.now()
	}

	_, err := c.s.Run(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Color, cat.Icon, cat.IsSystem, toMillis(cat.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create category %q: %w", cat.Name, err)
	}

	slog.Info("Created category", "id", cat.ID, "name", cat.Name)
	return nil
}

// Delete removes a user category together with its budget. System categories
// fail with ErrProtectedCategory and categories still referenced by expenses
// fail with ErrInUse.
func (c *CategoryStore) Delete(ctx context.Context, id string) error {
	if err := c.s.ensureReady(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return c.s.WithTx(ctx, func(tx *sql.Tx) error {
		var isSystem bool
		err := tx.QueryRowContext(ctx, `SELECT is_system FROM categories WHERE id = ?`, id).Scan(&isSystem)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: category %q", common.ErrNotFound, id)
		}
		if err != nil {
			return common.NewStorageError("get category", err)
		}
		if isSystem {
			return fmt.Errorf("%w: %q", common.ErrProtectedCategory, id)
		}

		var used int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM expenses WHERE category_id = ?`, id).Scan(&used); err != nil {
			return common.NewStorageError("count category expenses", err)
		}
		if used > 0 {
			return fmt.Errorf("%w: category %q has %d expenses", common.ErrInUse, id, used)
		}

		if _, err := run(ctx, tx, `DELETE FROM budgets WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete budget for %q: %w", id, err)
		}
		if _, err := run(ctx, tx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete category %q: %w", id, err)
		}

		slog.Info("Deleted category", "id", id)
		return nil
	})
}

func categoryExists(ctx context.Context, q querier, id string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE id = ?`, id).Scan(&n); err != nil {
		return false, common.NewStorageError("check category", err)
	}
	return n > 0, nil
}
