package http

import (
	"kharcha/internal/core"
	"kharcha/internal/format"
)

// JSON shapes of the API. Amounts are sent both as integer paise and as the
// display string.

type categoryJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type expenseJSON struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	AmountCents int64        `json:"amount_cents"`
	Amount      string       `json:"amount"`
	Category    categoryJSON `json:"category"`
	Date        core.Date    `json:"date"`
	Description string       `json:"description,omitempty"`
	Status      core.Status  `json:"status"`
}

type statsJSON struct {
	Count        int     `json:"count"`
	TotalCents   int64   `json:"total_cents"`
	Total        string  `json:"total"`
	MonthlyCents int64   `json:"monthly_cents"`
	Monthly      string  `json:"monthly"`
	Pending      int     `json:"pending"`
	Average      float64 `json:"average"`
	AverageText  string  `json:"average_text"`
}

type categoryStatJSON struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
	Count      int    `json:"count"`
}

type statusBreakdownJSON struct {
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

type summaryJSON struct {
	TotalTransactions int                 `json:"total_transactions"`
	Statuses          statusBreakdownJSON `json:"statuses"`
	Categories        []categoryStatJSON  `json:"categories"`
	TopCategories     []categoryStatJSON  `json:"top_categories"`
}

type reportEnvelope struct {
	Kind core.ReportKind `json:"kind"`
	Data any             `json:"data"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Title:       e.Title,
		AmountCents: e.Amount.Cents,
		Amount:      format.Rupees(e.Amount),
		Category:    toCategoryJSON(e.Category),
		Date:        e.Date,
		Description: e.Description,
		Status:      e.Status,
	}
}

func toExpensesJSON(expenses []core.Expense) []expenseJSON {
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	return out
}

func toStatsJSON(s core.Stats) statsJSON {
	return statsJSON{
		Count:        s.Count,
		TotalCents:   s.Total.Cents,
		Total:        format.Rupees(s.Total),
		MonthlyCents: s.Monthly.Cents,
		Monthly:      format.Rupees(s.Monthly),
		Pending:      s.Pending,
		Average:      s.Average,
		AverageText:  format.RupeesFloat(s.Average),
	}
}

func toCategoryStatsJSON(stats []core.CategoryStat) []categoryStatJSON {
	out := make([]categoryStatJSON, 0, len(stats))
	for _, c := range stats {
		out = append(out, categoryStatJSON{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Color:      c.Color,
			TotalCents: c.Total.Cents,
			Total:      format.Rupees(c.Total),
			Count:      c.Count,
		})
	}
	return out
}

func toReportEnvelope(r core.Report) reportEnvelope {
	env := reportEnvelope{Kind: r.Kind()}
	switch rep := r.(type) {
	case core.SummaryReport:
		env.Data = summaryJSON{
			TotalTransactions: rep.TotalTransactions,
			Statuses: statusBreakdownJSON{
				Approved: rep.Statuses.Approved,
				Pending:  rep.Statuses.Pending,
				Rejected: rep.Statuses.Rejected,
			},
			Categories:    toCategoryStatsJSON(rep.Categories),
			TopCategories: toCategoryStatsJSON(rep.TopCategories),
		}
	case core.ApprovalsReport:
		env.Data = map[string]any{"pending": toExpensesJSON(rep.Pending)}
	case core.ScheduleReport:
		env.Data = map[string]any{"upcoming": toExpensesJSON(rep.Upcoming)}
	}
	return env
}
