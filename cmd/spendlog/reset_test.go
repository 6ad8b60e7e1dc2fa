package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendlog/internal/testutil"
)

func seedResetData(t *testing.T, env *testEnv) {
	t.Helper()

	db := env.db()
	db.MustCreateCategory("Pets")
	db.MustCreateExpense(1200, "pets", testutil.FixedNow)
	db.MustCreateExpense(300, "food", testutil.FixedNow)
	db.MustSetBudget("pets", 5000)
	require.NoError(t, db.Storage.Close())
}

func TestResetCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("declined", func(t *testing.T) {
		env := newTestEnv(t)
		seedResetData(t, env)

		out, err := env.run("n\n", "reset")
		require.NoError(t, err)
		assert.Contains(t, out, "Reset cancelled.")

		expenses, err := env.db().Storage.Expenses().ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, expenses, 2)
	})

	t.Run("end of input declines", func(t *testing.T) {
		env := newTestEnv(t)
		seedResetData(t, env)

		out, err := env.run("", "reset")
		require.NoError(t, err)
		assert.Contains(t, out, "Reset cancelled.")
	})

	t.Run("expenses only", func(t *testing.T) {
		env := newTestEnv(t)
		seedResetData(t, env)

		out, err := env.run("y\n", "reset")
		require.NoError(t, err)
		assert.Contains(t, out, "Deleted 2 expenses")

		db := env.db()
		expenses, err := db.Storage.Expenses().ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, expenses)

		budget, err := db.Storage.Budgets().Get(ctx, "pets")
		require.NoError(t, err)
		assert.NotNil(t, budget, "budgets survive")

		_, err = db.Storage.Categories().Get(ctx, "pets")
		assert.NoError(t, err, "user categories survive")
	})

	t.Run("all data", func(t *testing.T) {
		env := newTestEnv(t)
		seedResetData(t, env)

		out := env.mustRun("reset", "--all", "--force")
		assert.Contains(t, out, "Deleted 2 expenses, 1 budgets and 1 categories")

		cats, err := env.db().Storage.Categories().List(ctx)
		require.NoError(t, err)
		assert.Len(t, cats, 5)
		for _, c := range cats {
			assert.True(t, c.IsSystem)
		}
	})
}
