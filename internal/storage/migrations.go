package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/model"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 5

const schemaVersionKey = "schema_version"

const createMetaTable = `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`

const createBudgetsTable = `
	CREATE TABLE IF NOT EXISTS budgets (
		category_id TEXT PRIMARY KEY,
		amount INTEGER NOT NULL,
		FOREIGN KEY (category_id) REFERENCES categories(id)
	)`

// Migration represents a database schema migration.
type Migration struct {
	Up          func(context.Context, *sql.Tx) error
	Description string
	Version     int
}

// Migrations are additive only: nothing is dropped, so a forward migration is
// always safe on a store that has no rollback mechanism.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Create categories and expenses",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL UNIQUE,
					color TEXT NOT NULL,
					icon TEXT,
					created_at INTEGER NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS expenses (
					id TEXT PRIMARY KEY,
					amount INTEGER NOT NULL,
					category_id TEXT NOT NULL,
					note TEXT,
					occurred_at INTEGER NOT NULL,
					created_at INTEGER NOT NULL,
					updated_at INTEGER NOT NULL,
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,
			}
			return execAll(ctx, tx, queries)
		},
	},
	{
		Version:     2,
		Description: "Add system flag to categories",
		Up:          ensureSystemFlag,
	},
	{
		Version:     3,
		Description: "Add budgets table",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx, []string{createBudgetsTable})
		},
	},
	{
		Version:     4,
		Description: "Index expenses by date and category",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			return execAll(ctx, tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_expenses_occurred_at ON expenses(occurred_at)`,
				`CREATE INDEX IF NOT EXISTS idx_expenses_category_id ON expenses(category_id)`,
			})
		},
	},
	{
		// Stores recorded at version 3 or later by older builds may still lack
		// the budgets table or the system flag.
		Version:     5,
		Description: "Reconcile budgets table and system flag",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			if err := execAll(ctx, tx, []string{createBudgetsTable}); err != nil {
				return err
			}
			return ensureSystemFlag(ctx, tx)
		},
	},
}

// ensureSystemFlag adds categories.is_system when missing, marking every
// existing category as system, and backfills missing icons.
func ensureSystemFlag(ctx context.Context, tx *sql.Tx) error {
	exists, err := columnExists(ctx, tx, "categories", "is_system")
	if err != nil {
		return err
	}
	if exists {
		// Some snapshots created the column up front; its values are
		// already meaningful.
		slog.Debug("categories.is_system already present, skipping backfill")
	} else {
		queries := []string{
			`ALTER TABLE categories ADD COLUMN is_system INTEGER NOT NULL DEFAULT 0`,
			`UPDATE categories SET is_system = 1`,
		}
		if err := execAll(ctx, tx, queries); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE categories SET icon = ? WHERE icon IS NULL`, model.DefaultCategoryIcon); err != nil {
		return fmt.Errorf("failed to backfill category icons: %w", err)
	}
	return nil
}

func execAll(ctx context.Context, tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

func columnExists(ctx context.Context, q querier, table, column string) (bool, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// SchemaVersion returns the version recorded in the meta table, or 0 when the
// table or row is absent.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := s.Exec(ctx, createMetaTable); err != nil {
		return 0, fmt.Errorf("failed to create meta table: %w", err)
	}
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	return readSchemaVersion(ctx, db)
}

func readSchemaVersion(ctx context.Context, q querier) (int, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, schemaVersionKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, common.NewStorageError("read schema version", err)
	}

	version, err := strconv.Atoi(value)
	if err != nil {
		return 0, common.NewStorageError("parse schema version", err)
	}
	return version, nil
}

func writeSchemaVersion(ctx context.Context, tx *sql.Tx, version int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`,
		schemaVersionKey, strconv.Itoa(version))
	return err
}

// Migrate applies all pending database migrations. Each step runs in its own
// transaction together with the version bump, so a failed step leaves the
// recorded version untouched and is retried on the next call.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if err := s.applyMigrations(ctx, migrations, ExpectedSchemaVersion); err != nil {
		return err
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

func (s *SQLiteStorage) applyMigrations(ctx context.Context, ladder []Migration, latest int) error {
	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if currentVersion > latest {
		return fmt.Errorf("database schema version %d is newer than supported version %d",
			currentVersion, latest)
	}

	for _, migration := range ladder {
		if migration.Version <= currentVersion {
			continue
		}

		err := s.WithTx(ctx, func(tx *sql.Tx) error {
			if upErr := migration.Up(ctx, tx); upErr != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
			}
			if execErr := writeSchemaVersion(ctx, tx, migration.Version); execErr != nil {
				return fmt.Errorf("failed to update schema version: %w", execErr)
			}
			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	return nil
}
