package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/model"
	"github.com/Veraticus/spendlog/internal/service"
)

const expenseColumns = `id, amount, category_id, note, occurred_at, created_at, updated_at`

// ExpenseStore records and aggregates expenses.
type ExpenseStore struct {
	s *SQLiteStorage
}

// Expenses returns the expense store backed by this gateway.
func (s *SQLiteStorage) Expenses() service.ExpenseRepository {
	return &ExpenseStore{s: s}
}

func (e *ExpenseStore) scan(row RowScanner) (model.Expense, error) {
	var (
		exp                              model.Expense
		note                             sql.NullString
		occurredAt, createdAt, updatedAt int64
	)
	if err := row.Scan(&exp.ID, &exp.Amount, &exp.CategoryID, &note, &occurredAt, &createdAt, &updatedAt); err != nil {
		return model.Expense{}, err
	}
	exp.Note = note.String
	exp.OccurredAt = e.s.fromMillis(occurredAt)
	exp.CreatedAt = e.s.fromMillis(createdAt)
	exp.UpdatedAt = e.s.fromMillis(updatedAt)
	return exp, nil
}

func nullableNote(note string) sql.NullString {
	return sql.NullString{String: note, Valid: note != ""}
}

// monthWindow returns [first of month, first of next month) in the configured location.
func (e *ExpenseStore) monthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, e.s.location)
	return start, start.AddDate(0, 1, 0)
}

// Create validates and inserts an expense, returning the stored row. An empty
// ID is replaced by a random UUID.
func (e *ExpenseStore) Create(ctx context.Context, exp model.Expense) (*model.Expense, error) {
	if err := e.s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if err := validateExpenseFields(exp.Amount, exp.CategoryID, exp.OccurredAt); err != nil {
		return nil, err
	}

	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	now := e.s.now()
	exp.CreatedAt = now
	exp.UpdatedAt = now

	err := e.s.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := categoryExists(ctx, tx, exp.CategoryID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: category %q does not exist", common.ErrValidation, exp.CategoryID)
		}

		_, err = run(ctx, tx,
			`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			exp.ID, exp.Amount, exp.CategoryID, nullableNote(exp.Note),
			toMillis(exp.OccurredAt), toMillis(now), toMillis(now))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	exp.OccurredAt = e.s.fromMillis(toMillis(exp.OccurredAt))
	exp.CreatedAt = e.s.fromMillis(toMillis(now))
	exp.UpdatedAt = exp.CreatedAt

	slog.Debug("created expense", "id", exp.ID, "category", exp.CategoryID, "amount", exp.Amount)
	return &exp, nil
}

// Get returns the expense with the given id, or ErrNotFound.
func (e *ExpenseStore) Get(ctx context.Context, id string) (*model.Expense, error) {
	if err := e.s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	db, err := e.s.conn()
	if err != nil {
		return nil, err
	}

	exp, err := e.scan(db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %q", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, common.NewStorageError("get expense", err)
	}
	return &exp, nil
}

// Update overwrites the amount, category, note and date of an expense and
// refreshes its UpdatedAt. The same validation as Create applies.
func (e *ExpenseStore) Update(ctx context.Context, id string, u model.ExpenseUpdate) error {
	if err := e.s.ensureReady(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateExpenseFields(u.Amount, u.CategoryID, u.OccurredAt); err != nil {
		return err
	}

	return e.s.WithTx(ctx, func(tx *sql.Tx) error {
		exists, err := categoryExists(ctx, tx, u.CategoryID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: category %q does not exist", common.ErrValidation, u.CategoryID)
		}

		n, err := run(ctx, tx, `
			UPDATE expenses
			SET amount = ?, category_id = ?, note = ?, occurred_at = ?, updated_at = ?
			WHERE id = ?`,
			u.Amount, u.CategoryID, nullableNote(u.Note), toMillis(u.OccurredAt), toMillis(e.s.now()), id)
		if err != nil {
			return fmt.Errorf("failed to update expense %q: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: expense %q", common.ErrNotFound, id)
		}
		return nil
	})
}

// Delete removes an expense. Deleting a missing id is a no-op.
func (e *ExpenseStore) Delete(ctx context.Context, id string) error {
	if err := e.s.ensureReady(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	n, err := e.s.Run(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense %q: %w", id, err)
	}
	if n == 0 {
		slog.Debug("expense already absent", "id", id)
	}
	return nil
}

// List returns a page of expenses, most recent first.
func (e *ExpenseStore) List(ctx context.Context, limit, offset int) ([]model.Expense, error) {
	if err := e.s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if err := validatePage(limit, offset); err != nil {
		return nil, err
	}

	expenses, err := Query(ctx, e.s, e.scan, `
		SELECT `+expenseColumns+` FROM expenses
		ORDER BY occurred_at DESC, id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// ListAll returns every expense ordered by occurrence, oldest first.
func (e *ExpenseStore) ListAll(ctx context.Context) ([]model.Expense, error) {
	if err := e.s.ensureReady(ctx); err != nil {
		return nil, err
	}

	expenses, err := Query(ctx, e.s, e.scan,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY occurred_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// ListForToday returns every expense in the current local day, most recent first.
func (e *ExpenseStore) ListForToday(ctx context.Context) ([]model.Expense, error) {
	if err := e.s.ensureReady(ctx); err != nil {
		return nil, err
	}

	now := e.s.now().In(e.s.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.s.location)
	end := start.Add(24 * time.Hour)

	expenses, err := Query(ctx, e.s, e.scan, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at DESC, id`, toMillis(start), toMillis(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list today's expenses: %w", err)
	}
	return expenses, nil
}

// ListForMonth returns a page of the expenses of one calendar month, most
// recent first.
func (e *ExpenseStore) ListForMonth(ctx context.Context, year int, month time.Month, limit, offset int) ([]model.Expense, error) {
	if err := e.s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	if err := validatePage(limit, offset); err != nil {
		return nil, err
	}

	start, end := e.monthWindow(year, month)
	expenses, err := Query(ctx, e.s, e.scan, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at DESC, id
		LIMIT ? OFFSET ?`, toMillis(start), toMillis(end), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for %d-%02d: %w", year, month, err)
	}
	return expenses, nil
}

// TotalForMonth sums the expenses of one calendar month. An empty month is 0.
func (e *ExpenseStore) TotalForMonth(ctx context.Context, year int, month time.Month) (int64, error) {
	if err := e.s.ensureReady(ctx); err != nil {
		return 0, err
	}
	if err := validateMonth(month); err != nil {
		return 0, err
	}

	start, end := e.monthWindow(year, month)
	totals, err := Query(ctx, e.s, func(row RowScanner) (int64, error) {
		var total int64
		err := row.Scan(&total)
		return total, err
	}, `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE occurred_at >= ? AND occurred_at < ?`,
		toMillis(start), toMillis(end))
	if err != nil {
		return 0, fmt.Errorf("failed to total expenses for %d-%02d: %w", year, month, err)
	}
	if len(totals) == 0 {
		return 0, nil
	}
	return totals[0], nil
}

// MonthlyCategoryTotals sums one calendar month per category, largest first.
func (e *ExpenseStore) MonthlyCategoryTotals(ctx context.Context, year int, month time.Month) ([]model.CategoryTotal, error) {
	if err := e.s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	start, end := e.monthWindow(year, month)
	totals, err := Query(ctx, e.s, func(row RowScanner) (model.CategoryTotal, error) {
		var ct model.CategoryTotal
		err := row.Scan(&ct.CategoryID, &ct.Total)
		return ct, err
	}, `
		SELECT category_id, SUM(amount) AS total FROM expenses
		WHERE occurred_at >= ? AND occurred_at < ?
		GROUP BY category_id
		ORDER BY total DESC, category_id`, toMillis(start), toMillis(end))
	if err != nil {
		return nil, fmt.Errorf("failed to total categories for %d-%02d: %w", year, month, err)
	}
	return totals, nil
}

// LastNMonthTotals sums each of the last count calendar months, ending with
// the current one, oldest first. Months without expenses are omitted.
func (e *ExpenseStore) LastNMonthTotals(ctx context.Context, count int) ([]model.MonthlyTotal, error) {
	if err := e.s.ensureReady(ctx); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: month count must be positive, got %d", common.ErrValidation, count)
	}

	now := e.s.now().In(e.s.location)
	current, end := e.monthWindow(now.Year(), now.Month())
	start := current.AddDate(0, -(count - 1), 0)

	type point struct {
		at     int64
		amount int64
	}
	points, err := Query(ctx, e.s, func(row RowScanner) (point, error) {
		var p point
		err := row.Scan(&p.at, &p.amount)
		return p, err
	}, `
		SELECT occurred_at, amount FROM expenses
		WHERE occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at`, toMillis(start), toMillis(end))
	if err != nil {
		return nil, fmt.Errorf("failed to load trend window: %w", err)
	}

	// Points are ordered, so months arrive in ascending order.
	var totals []model.MonthlyTotal
	for _, p := range points {
		at := e.s.fromMillis(p.at)
		n := len(totals)
		if n > 0 && totals[n-1].Year == at.Year() && totals[n-1].Month == at.Month() {
			totals[n-1].Total += p.amount
			continue
		}
		totals = append(totals, model.MonthlyTotal{Year: at.Year(), Month: at.Month(), Total: p.amount})
	}
	return totals, nil
}
