package model

// Budget is the monthly spending limit of a category, in minor units.
type Budget struct {
	CategoryID string
	Amount     int64
}

// ClearStats counts the rows removed by a full data reset.
type ClearStats struct {
	Expenses   int64
	Budgets    int64
	Categories int64
}
