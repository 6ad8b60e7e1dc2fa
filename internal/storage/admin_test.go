package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendlog/internal/model"
)

func populate(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Categories().Create(ctx, model.NewCustomCategory("Hobbies", "", "", fixedNow)))
	require.NoError(t, store.Budgets().Set(ctx, "food", 10000))
	require.NoError(t, store.Budgets().Set(ctx, "hobbies", 3000))
	mustCreateExpense(t, store, 1500, "food", fixedNow)
	mustCreateExpense(t, store, 2500, "hobbies", fixedNow)
}

func TestClearExpenses(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	populate(t, store)

	n, err := store.ClearExpenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := store.Expenses().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	budgets, err := store.Budgets().List(ctx)
	require.NoError(t, err)
	assert.Len(t, budgets, 2, "budgets survive")

	_, err = store.Categories().Get(ctx, "hobbies")
	assert.NoError(t, err, "custom categories survive")
}

func TestClearAllData(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	populate(t, store)

	stats, err := store.ClearAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ClearStats{Expenses: 2, Budgets: 2, Categories: 1}, stats)

	cats, err := store.Categories().List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(model.DefaultCategories()))
	for _, c := range cats {
		assert.True(t, c.IsSystem)
	}

	budgets, err := store.Budgets().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, budgets)
}

func TestClearAllData_Atomic(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	populate(t, store)

	// A trigger that aborts category deletes makes the last step fail.
	require.NoError(t, store.Exec(ctx, `
		CREATE TRIGGER block_category_delete BEFORE DELETE ON categories
		BEGIN
			SELECT RAISE(ABORT, 'blocked');
		END`))

	_, err := store.ClearAllData(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear categories")

	all, err := store.Expenses().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "expenses are restored by the rollback")

	budgets, err := store.Budgets().List(ctx)
	require.NoError(t, err)
	assert.Len(t, budgets, 2, "budgets are restored by the rollback")
}
