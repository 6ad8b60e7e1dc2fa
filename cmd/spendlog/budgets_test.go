package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spendlog/internal/common"
)

func TestBudgetsCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("budgets", "list")
	assert.Contains(t, out, "No budgets set")

	out = env.mustRun("budgets", "set", "food", "400")
	assert.Contains(t, out, "Budget for food set to 400.00")

	out = env.mustRun("budgets", "get", "food")
	assert.Contains(t, out, "food: 400.00 per month")

	// Setting again replaces the amount.
	env.mustRun("budgets", "set", "food", "250.5")
	out = env.mustRun("budgets", "get", "food")
	assert.Contains(t, out, "food: 250.50 per month")

	env.mustRun("expenses", "add", "100", "-c", "food")
	env.mustRun("expenses", "add", "7", "-c", "food", "--date", "2024-02-10")

	out = env.mustRun("budgets", "list")
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "100.00", "only the selected month counts")
	assert.Contains(t, out, "250.50")

	out = env.mustRun("budgets", "list", "2024-02")
	assert.Contains(t, out, "7.00")

	env.mustRun("budgets", "remove", "food")
	out = env.mustRun("budgets", "get", "food")
	assert.Contains(t, out, "No budget set for food")

	// Removing a missing budget is a no-op.
	env.mustRun("budgets", "remove", "food")
}

func TestBudgetsSet_Invalid(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("", "budgets", "set", "yachts", "10")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = env.run("", "budgets", "set", "food", "0")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestBudgetsClear(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("budgets", "set", "food", "10")
	env.mustRun("budgets", "set", "transport", "20")

	out, err := env.run("n\n", "budgets", "clear")
	assert.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Contains(t, env.mustRun("budgets", "list"), "transport")

	out = env.mustRun("budgets", "clear", "--force")
	assert.Contains(t, out, "All budgets removed")
	assert.Contains(t, env.mustRun("budgets", "list"), "No budgets set")
}
