package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/Veraticus/spendlog/internal/cli"
	"github.com/Veraticus/spendlog/internal/common"
	"github.com/Veraticus/spendlog/internal/model"
	"github.com/Veraticus/spendlog/internal/service"
	"github.com/Veraticus/spendlog/internal/storage"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	// maxPage is the page size used when a command wants every row.
	maxPage = math.MaxInt32
)

// clock is the time source of every command. Tests pin it.
var clock = time.Now

// location resolves the configured zone, falling back to the system zone.
func location() (*time.Location, error) {
	if appConfig.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(appConfig.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", common.ErrInvalidConfig, appConfig.Location)
	}
	return loc, nil
}

// openStorage creates the storage gateway without running migrations.
func openStorage() (*storage.SQLiteStorage, error) {
	loc, err := location()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(appConfig.DatabasePath,
		storage.WithLocation(loc),
		storage.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// initStorage opens the database and brings it up to date.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := openStorage()
	if err != nil {
		return nil, err
	}

	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// printf writes to w, logging rather than failing when the terminal is gone.
func printf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func printLine(w io.Writer, line string) {
	printf(w, "%s\n", line)
}

// parseMonth accepts YYYY-MM. An empty argument means the current month.
func parseMonth(arg string, loc *time.Location) (int, time.Month, error) {
	if arg == "" {
		now := clock().In(loc)
		return now.Year(), now.Month(), nil
	}
	t, err := time.ParseInLocation(monthLayout, arg, loc)
	if err != nil {
		return 0, 0, common.NewUserError(fmt.Sprintf("invalid month %q, expected YYYY-MM", arg), common.ErrValidation)
	}
	return t.Year(), t.Month(), nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. An empty argument means now.
func parseDate(arg string, loc *time.Location) (time.Time, error) {
	if arg == "" {
		return clock(), nil
	}
	if t, err := time.ParseInLocation(dateLayout, arg, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, arg); err == nil {
		return t, nil
	}
	return time.Time{}, common.NewUserError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", arg), common.ErrValidation)
}

// categoryIndex maps category ids to categories for display.
func categoryIndex(ctx context.Context, store service.Storage) (map[string]model.Category, error) {
	cats, err := store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	index := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		index[c.ID] = c
	}
	return index, nil
}

func categoryLabel(index map[string]model.Category, id string) string {
	c, ok := index[id]
	if !ok {
		return id
	}
	return cli.Swatch(c.Color) + " " + c.Name
}

// renderExpenses prints expenses as a table in the order given.
func renderExpenses(w io.Writer, index map[string]model.Category, expenses []model.Expense, loc *time.Location) {
	rows := make([][]string, 0, len(expenses))
	var total int64
	for _, e := range expenses {
		rows = append(rows, []string{
			e.ID,
			e.OccurredAt.In(loc).Format(dateLayout),
			categoryLabel(index, e.CategoryID),
			cli.FormatAmount(e.Amount),
			e.Note,
		})
		total += e.Amount
	}

	printLine(w, cli.RenderTable([]string{"ID", "Date", "Category", "Amount", "Note"}, rows, 3))
	printf(w, "%s %d expenses, %s\n", cli.SubtleStyle.Render("Total:"), len(expenses), cli.FormatAmount(total))
}
