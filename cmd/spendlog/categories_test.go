package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendlog/internal/common"
)

func TestCategoriesCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("categories", "list")
	for _, name := range []string{"Food", "Transport", "Groceries", "Entertainment", "Others"} {
		assert.Contains(t, out, name)
	}

	out = env.mustRun("categories", "add", "Coffee Shops", "--icon", "cafe")
	assert.Contains(t, out, "Created category")
	assert.Contains(t, out, "coffee-shops")

	out = env.mustRun("categories", "list")
	assert.Contains(t, out, "Coffee Shops")
	assert.Contains(t, out, "cafe")

	t.Run("duplicate name", func(t *testing.T) {
		_, err := env.run("", "categories", "add", "coffee  shops")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrDuplicate)
		assert.Equal(t, `category "coffee-shops" already exists`, common.UserMessage(err))
	})

	t.Run("system category is protected", func(t *testing.T) {
		_, err := env.run("", "categories", "delete", "food")
		assert.ErrorIs(t, err, common.ErrProtectedCategory)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := env.run("", "categories", "delete", "nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("category in use", func(t *testing.T) {
		env.mustRun("expenses", "add", "3.20", "-c", "coffee-shops")

		_, err := env.run("", "categories", "delete", "coffee-shops")
		assert.ErrorIs(t, err, common.ErrInUse)
	})

	t.Run("delete removes budget", func(t *testing.T) {
		env.mustRun("categories", "add", "Pets")
		env.mustRun("budgets", "set", "pets", "50")

		out := env.mustRun("categories", "delete", "pets")
		assert.Contains(t, out, "Deleted category pets")

		db := env.db()
		budget, err := db.Storage.Budgets().Get(context.Background(), "pets")
		require.NoError(t, err)
		assert.Nil(t, budget)
	})
}
