package model

// DayKeyLayout formats the UTC calendar day used to bucket expenses.
const DayKeyLayout = "2006-01-02"

// DayGroup holds the expenses of one calendar day.
type DayGroup struct {
	Day      string // YYYY-MM-DD in UTC
	Expenses []Expense
	Total    int64
}

// GroupByDay buckets expenses by the UTC day of OccurredAt.
// Groups appear in the order their day is first seen in the input; sort the
// input beforehand if chronological groups are needed.
func GroupByDay(expenses []Expense) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup

	for _, e := range expenses {
		key := e.OccurredAt.UTC().Format(DayKeyLayout)

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Day: key})
		}

		groups[i].Expenses = append(groups[i].Expenses, e)
		groups[i].Total += e.Amount
	}

	return groups
}
