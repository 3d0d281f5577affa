package core

import "strings"

// StatusFilter selects expenses by status. AllStatuses, like the zero value,
// disables the filter.
type StatusFilter string

const AllStatuses StatusFilter = "all"

// Query is the combined search-and-status filter used by the transactions list.
type Query struct {
	Search string
	Status StatusFilter
}

// ParseStatusFilter accepts "all" (or an empty string) and the three statuses.
func ParseStatusFilter(s string) (StatusFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(AllStatuses) {
		return AllStatuses, nil
	}
	st, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	return StatusFilter(st), nil
}

// FilterBySearch keeps expenses whose title or description contains term,
// ignoring case. An empty term keeps everything.
func FilterBySearch(expenses []Expense, term string) []Expense {
	needle := strings.ToLower(term)
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if matchesSearch(e, needle) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByStatus keeps expenses with exactly the given status.
func FilterByStatus(expenses []Expense, status StatusFilter) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if matchesStatus(e, status) {
			out = append(out, e)
		}
	}
	return out
}

// Filter applies both filters of q. The input slice is not modified and the
// result keeps the input order.
func Filter(expenses []Expense, q Query) []Expense {
	needle := strings.ToLower(q.Search)
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if matchesSearch(e, needle) && matchesStatus(e, q.Status) {
			out = append(out, e)
		}
	}
	return out
}

func matchesSearch(e Expense, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Title), needle) ||
		strings.Contains(strings.ToLower(e.Description), needle)
}

func matchesStatus(e Expense, status StatusFilter) bool {
	return status == AllStatuses || status == "" || Status(status) == e.Status
}
