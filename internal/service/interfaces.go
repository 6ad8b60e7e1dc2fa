// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"
	"time"

	"github.com/Veraticus/spendlog/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error

	// Stores
	Categories() CategoryRepository
	Budgets() BudgetRepository
	Expenses() ExpenseRepository

	// Administrative reset
	ClearExpenses(ctx context.Context) (int64, error)
	ClearAllData(ctx context.Context) (model.ClearStats, error)

	// Export
	ExportCSV(ctx context.Context, w io.Writer) (int, error)
}

// CategoryRepository manages expense categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	Create(ctx context.Context, cat model.Category) error
	Delete(ctx context.Context, id string) error
}

// BudgetRepository manages per-category monthly budgets.
type BudgetRepository interface {
	List(ctx context.Context) ([]model.Budget, error)
	Get(ctx context.Context, categoryID string) (*model.Budget, error)
	Set(ctx context.Context, categoryID string, amount int64) error
	Remove(ctx context.Context, categoryID string) error
	Clear(ctx context.Context) error
}

// ExpenseRepository records expenses and computes aggregates over them.
type ExpenseRepository interface {
	Create(ctx context.Context, exp model.Expense) (*model.Expense, error)
	Get(ctx context.Context, id string) (*model.Expense, error)
	Update(ctx context.Context, id string, u model.ExpenseUpdate) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, limit, offset int) ([]model.Expense, error)
	ListAll(ctx context.Context) ([]model.Expense, error)
	ListForToday(ctx context.Context) ([]model.Expense, error)
	ListForMonth(ctx context.Context, year int, month time.Month, limit, offset int) ([]model.Expense, error)

	TotalForMonth(ctx context.Context, year int, month time.Month) (int64, error)
	MonthlyCategoryTotals(ctx context.Context, year int, month time.Month) ([]model.CategoryTotal, error)
	LastNMonthTotals(ctx context.Context, count int) ([]model.MonthlyTotal, error)
}
