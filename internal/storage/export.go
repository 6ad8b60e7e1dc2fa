package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/spendlog/internal/model"
	"github.com/Veraticus/spendlog/internal/money"
)

// CSVHeader is the first line of every export.
const CSVHeader = "id,amount,category,note,date"

// CSVDateLayout renders the occurrence date of an exported row.
const CSVDateLayout = "2006-01-02T15:04:05.000Z"

// ExportCSV writes every expense, oldest first, and returns the number of
// rows written. Lines are separated by "\n" with no trailing newline.
func (s *SQLiteStorage) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	expenses, err := s.Expenses().ListAll(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := io.WriteString(w, FormatCSV(expenses)); err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}
	return len(expenses), nil
}

// FormatCSV renders expenses in the export format.
func FormatCSV(expenses []model.Expense) string {
	lines := make([]string, 0, len(expenses)+1)
	lines = append(lines, CSVHeader)
	for _, e := range expenses {
		lines = append(lines, strings.Join([]string{
			e.ID,
			money.Format(e.Amount),
			e.CategoryID,
			csvNote(e.Note),
			e.OccurredAt.In(time.UTC).Format(CSVDateLayout),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// csvNote quotes a note, doubling embedded quotes. An empty note is an empty field.
func csvNote(note string) string {
	if note == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(note, `"`, `""`) + `"`
}
