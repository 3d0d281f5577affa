package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"kharcha/internal/core"
	"kharcha/internal/format"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeRow(tw *tabwriter.Writer, cells ...string) error {
	_, err := fmt.Fprintln(tw, strings.Join(cells, "\t"))
	return err
}

func header(tw *tabwriter.Writer, names ...string) error {
	styled := make([]string, len(names))
	rules := make([]string, len(names))
	for i, n := range names {
		styled[i] = HeaderStyle.Render(n)
		rules[i] = strings.Repeat("─", len(n))
	}
	if err := writeRow(tw, styled...); err != nil {
		return err
	}
	return writeRow(tw, rules...)
}

func renderStatus(s core.Status) string {
	if style, ok := statusStyles[s.String()]; ok {
		return style.Render(format.Status(s))
	}
	return format.Status(s)
}

// RenderExpenses prints expenses as a table in the given order.
func RenderExpenses(w io.Writer, expenses []core.Expense) error {
	if len(expenses) == 0 {
		_, err := fmt.Fprintln(w, SubtleStyle.Render("No expenses match."))
		return err
	}

	tw := newTable(w)
	if err := header(tw, "ID", "Title", "Category", "Date", "Amount", "Status"); err != nil {
		return err
	}
	for _, e := range expenses {
		if err := writeRow(tw,
			e.ID,
			e.Title,
			e.Category.Name,
			format.Date(e.Date),
			format.Rupees(e.Amount),
			renderStatus(e.Status),
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// RenderStats prints the four dashboard cards.
func RenderStats(w io.Writer, s core.Stats) error {
	if _, err := fmt.Fprintln(w, TitleStyle.Render("Expense overview")); err != nil {
		return err
	}
	tw := newTable(w)
	rows := [][2]string{
		{"Total expenses", fmt.Sprintf("%s (%d transactions)", format.Rupees(s.Total), s.Count)},
		{"This month", format.Rupees(s.Monthly)},
		{"Pending approval", fmt.Sprint(s.Pending)},
		{"Average expense", format.RupeesFloat(s.Average)},
	}
	for _, r := range rows {
		if err := writeRow(tw, SubtleStyle.Render(r[0]), r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func renderCategoryStats(w io.Writer, stats []core.CategoryStat) error {
	tw := newTable(w)
	if err := header(tw, "Category", "Count", "Total"); err != nil {
		return err
	}
	for _, c := range stats {
		if err := writeRow(tw, c.Name, fmt.Sprint(c.Count), format.Rupees(c.Total)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// RenderReport prints any of the three report kinds.
func RenderReport(w io.Writer, r core.Report) error {
	switch rep := r.(type) {
	case core.SummaryReport:
		if _, err := fmt.Fprintf(w, "%s\n%d transactions: %d approved, %d pending, %d rejected\n\n",
			TitleStyle.Render("Summary"), rep.TotalTransactions,
			rep.Statuses.Approved, rep.Statuses.Pending, rep.Statuses.Rejected); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, TitleStyle.Render("Top categories")); err != nil {
			return err
		}
		if err := renderCategoryStats(w, rep.TopCategories); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "\n"+TitleStyle.Render("By category")); err != nil {
			return err
		}
		return renderCategoryStats(w, rep.Categories)
	case core.ApprovalsReport:
		if _, err := fmt.Fprintln(w, TitleStyle.Render("Awaiting approval")); err != nil {
			return err
		}
		return RenderExpenses(w, rep.Pending)
	case core.ScheduleReport:
		if _, err := fmt.Fprintln(w, TitleStyle.Render("Upcoming")); err != nil {
			return err
		}
		return RenderExpenses(w, rep.Upcoming)
	default:
		return fmt.Errorf("render %T: %w", r, core.ErrUnknownReport)
	}
}
