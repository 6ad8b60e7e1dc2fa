package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spendlog/internal/model"
)

func TestExportCSV(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	expenses := store.Expenses()

	_, err := expenses.Create(ctx, model.Expense{
		ID:         "b",
		Amount:     15000,
		CategoryID: "food",
		Note:       `dinner "party"`,
		OccurredAt: time.Date(2024, time.March, 2, 19, 30, 0, 250_000_000, time.UTC),
	})
	require.NoError(t, err)
	_, err = expenses.Create(ctx, model.Expense{
		ID:         "a",
		Amount:     5,
		CategoryID: "transport",
		OccurredAt: time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := store.ExportCSV(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	want := "id,amount,category,note,date\n" +
		"a,0.05,transport,,2024-03-01T08:00:00.000Z\n" +
		`b,150.00,food,"dinner ""party""",2024-03-02T19:30:00.250Z`
	assert.Equal(t, want, buf.String())
}

func TestExportCSV_LineCount(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	var empty bytes.Buffer
	n, err := store.ExportCSV(ctx, &empty)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, CSVHeader, empty.String())

	amounts := []int64{1, 99, 100, 123456}
	for i, amount := range amounts {
		mustCreateExpense(t, store, amount, "food", fixedNow.Add(time.Duration(i)*time.Minute))
	}

	var buf bytes.Buffer
	_, err = store.ExportCSV(ctx, &buf)
	require.NoError(t, err)

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, len(amounts)+1)
	for i, want := range []string{"0.01", "0.99", "1.00", "1234.56"} {
		fields := strings.Split(lines[i+1], ",")
		assert.Equal(t, want, fields[1])
	}
}

func TestExportCSV_UsesUTC(t *testing.T) {
	store := createTestStorage(t, WithLocation(time.FixedZone("UTC-7", -7*60*60)))

	mustCreateExpense(t, store, 100, "food", time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	_, err := store.ExportCSV(context.Background(), &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(buf.String(), ",2024-03-10T23:00:00.000Z"), buf.String())
}
