package core

import (
	"slices"
	"time"
)

// CategoryStat is the total and count of expenses filed under one category.
type CategoryStat struct {
	CategoryID string
	Name       string
	Color      string
	Total      Money
	Count      int
}

// StatusBreakdown counts expenses per approval state.
type StatusBreakdown struct {
	Approved int
	Pending  int
	Rejected int
}

// Stats is the set of headline numbers shown on the dashboard.
type Stats struct {
	Count   int
	Total   Money
	Monthly Money
	Pending int
	Average float64 // rupees
}

// TotalAmount sums every expense.
func TotalAmount(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// MonthlyAmount sums expenses dated in the same month of the year as ref.
// The year is not compared, so January 2024 and January 2025 both count.
func MonthlyAmount(expenses []Expense, ref time.Time) Money {
	var total Money
	for _, e := range expenses {
		if e.Date.Month() == ref.Month() {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// PendingCount counts expenses awaiting approval.
func PendingCount(expenses []Expense) int {
	n := 0
	for _, e := range expenses {
		if e.Status == StatusPending {
			n++
		}
	}
	return n
}

// AverageAmount returns the mean amount in rupees, or 0 for no expenses.
func AverageAmount(expenses []Expense) float64 {
	if len(expenses) == 0 {
		return 0
	}
	return TotalAmount(expenses).Rupees() / float64(len(expenses))
}

// CategoryTotal sums the expenses filed under categoryID. Unknown IDs give 0.
func CategoryTotal(expenses []Expense, categoryID string) Money {
	var total Money
	for _, e := range expenses {
		if e.Category.ID == categoryID {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// StatusBreakdownOf partitions expenses by status. Expenses carrying a status
// outside the three known states are not counted.
func StatusBreakdownOf(expenses []Expense) StatusBreakdown {
	var b StatusBreakdown
	for _, e := range expenses {
		switch e.Status {
		case StatusApproved:
			b.Approved++
		case StatusPending:
			b.Pending++
		case StatusRejected:
			b.Rejected++
		}
	}
	return b
}

// CategoryBreakdown returns one entry per category, in the order of categories.
func CategoryBreakdown(expenses []Expense, categories []Category) []CategoryStat {
	index := make(map[string]int, len(categories))
	out := make([]CategoryStat, len(categories))
	for i, c := range categories {
		out[i] = CategoryStat{CategoryID: c.ID, Name: c.Name, Color: c.Color}
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = i
		}
	}
	for _, e := range expenses {
		i, ok := index[e.Category.ID]
		if !ok {
			continue
		}
		out[i].Total = out[i].Total.Add(e.Amount)
		out[i].Count++
	}
	return out
}

// TopCategories returns the n largest entries by total. Ties keep their
// original order; n is clamped to [0, len(breakdown)].
func TopCategories(breakdown []CategoryStat, n int) []CategoryStat {
	sorted := slices.Clone(breakdown)
	slices.SortStableFunc(sorted, func(a, b CategoryStat) int {
		switch {
		case a.Total.Cents > b.Total.Cents:
			return -1
		case a.Total.Cents < b.Total.Cents:
			return 1
		default:
			return 0
		}
	})
	return sorted[:clamp(n, len(sorted))]
}

// UpcomingExpenses returns expenses dated today or later, earliest first, at
// most limit of them. Only calendar dates are compared.
func UpcomingExpenses(expenses []Expense, now time.Time, limit int) []Expense {
	today := DateOf(now)
	upcoming := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if !e.Date.Before(today.Time) {
			upcoming = append(upcoming, e)
		}
	}
	slices.SortStableFunc(upcoming, func(a, b Expense) int {
		return a.Date.Compare(b.Date.Time)
	})
	return upcoming[:clamp(limit, len(upcoming))]
}

// ComputeStats gathers the dashboard headline numbers.
func ComputeStats(expenses []Expense, now time.Time) Stats {
	return Stats{
		Count:   len(expenses),
		Total:   TotalAmount(expenses),
		Monthly: MonthlyAmount(expenses, now),
		Pending: PendingCount(expenses),
		Average: AverageAmount(expenses),
	}
}

func clamp(n, size int) int {
	if n < 0 {
		return 0
	}
	if n > size {
		return size
	}
	return n
}
