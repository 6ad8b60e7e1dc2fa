// Package testutil provides database fixtures for tests outside the storage
// package: an initialized in-memory store with a fixed clock, plus helpers to
// seed categories and expenses.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/spendlog/internal/model"
	"github.com/Veraticus/spendlog/internal/storage"
)

// FixedNow is the default clock of test databases.
var FixedNow = time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	Now      time.Time
	Location *time.Location
	// Path defaults to an in-memory database.
	Path string
	// Categories are created as user categories after seeding.
	Categories []string
	SkipInit   bool
}

// SetupTestDB creates an initialized in-memory database seeded with the
// default categories. It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	now := opts.Now
	if now.IsZero() {
		now = FixedNow
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	path := opts.Path
	if path == "" {
		path = ":memory:"
	}

	store, err := storage.NewSQLiteStorage(path,
		storage.WithClock(func() time.Time { return now }),
		storage.WithLocation(loc))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{Storage: store, t: t}
	if opts.SkipInit {
		return db
	}

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}
	for _, name := range opts.Categories {
		db.MustCreateCategory(name)
	}
	return db
}

// MustCreateCategory creates a user category named name or fails the test.
func (db *TestDB) MustCreateCategory(name string) model.Category {
	db.t.Helper()

	cat := model.NewCustomCategory(name, "", "", FixedNow)
	if err := db.Storage.Categories().Create(context.Background(), cat); err != nil {
		db.t.Fatalf("failed to create category %q: %v", name, err)
	}
	return cat
}

// MustCreateExpense records an expense or fails the test.
func (db *TestDB) MustCreateExpense(amount int64, categoryID string, at time.Time) *model.Expense {
	db.t.Helper()

	exp, err := db.Storage.Expenses().Create(context.Background(), model.Expense{
		Amount:     amount,
		CategoryID: categoryID,
		OccurredAt: at,
	})
	if err != nil {
		db.t.Fatalf("failed to create expense: %v", err)
	}
	return exp
}

// MustSetBudget sets a budget or fails the test.
func (db *TestDB) MustSetBudget(categoryID string, amount int64) {
	db.t.Helper()

	if err := db.Storage.Budgets().Set(context.Background(), categoryID, amount); err != nil {
		db.t.Fatalf("failed to set budget for %q: %v", categoryID, err)
	}
}
