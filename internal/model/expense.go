package model

import "time"

// Expense is a single spend entry. Amount is in minor currency units.
type Expense struct {
	OccurredAt time.Time // User-assigned transaction date
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ID         string
	CategoryID string
	Note       string // Empty means no note
	Amount     int64
}

// ExpenseUpdate carries the fields an edit overwrites.
type ExpenseUpdate struct {
	OccurredAt time.Time
	CategoryID string
	Note       string
	Amount     int64
}

// CategoryTotal is the spend of one category inside a window.
type CategoryTotal struct {
	CategoryID string
	Total      int64
}

// MonthlyTotal is the spend of one calendar month.
type MonthlyTotal struct {
	Year  int
	Month time.Month
	Total int64
}
