package core

// DefaultCategories returns the fixed category set every store starts with.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Office Supplies", Color: "#3B82F6", Icon: "Package"},
		{ID: "2", Name: "Travel", Color: "#10B981", Icon: "Plane"},
		{ID: "3", Name: "Meals", Color: "#F59E0B", Icon: "Coffee"},
		{ID: "4", Name: "Marketing", Color: "#EF4444", Icon: "Megaphone"},
		{ID: "5", Name: "Utilities", Color: "#8B5CF6", Icon: "Zap"},
		{ID: "6", Name: "Software", Color: "#06B6D4", Icon: "Monitor"},
	}
}

// SeedExpenses returns the sample records, newest first. Categories are
// resolved against the given set by ID; a missing category leaves the zero value.
func SeedExpenses(categories []Category) []Expense {
	cat := func(id string) Category {
		c, _ := FindCategory(categories, id)
		return c
	}
	return []Expense{
		{
			ID:          "1",
			Title:       "Office Supplies Purchase",
			Amount:      FromRupees(2500),
			Category:    cat("1"),
			Date:        NewDate(2024, 1, 15),
			Description: "Purchased stationery and office materials",
			Status:      StatusApproved,
		},
		{
			ID:          "2",
			Title:       "Business Trip to Pokhara",
			Amount:      FromRupees(8500),
			Category:    cat("2"),
			Date:        NewDate(2024, 1, 14),
			Description: "Transportation and accommodation costs",
			Status:      StatusPending,
		},
		{
			ID:          "3",
			Title:       "Team Lunch",
			Amount:      FromRupees(3200),
			Category:    cat("3"),
			Date:        NewDate(2024, 1, 13),
			Description: "Monthly team building lunch",
			Status:      StatusApproved,
		},
	}
}
