package core

import (
	"strings"
	"time"
)

const (
	ReportSummary   ReportKind = "summary"
	ReportApprovals ReportKind = "approvals"
	ReportSchedule  ReportKind = "schedule"
)

const (
	DefaultTopCategories = 3
	DefaultUpcomingLimit = 10
)

// ReportKind names one of the read-only report views.
type ReportKind string

// ReportKinds lists every report kind in display order.
func ReportKinds() []ReportKind {
	return []ReportKind{ReportSummary, ReportApprovals, ReportSchedule}
}

// ParseReportKind accepts "reports" as an alias of "summary".
func ParseReportKind(s string) (ReportKind, error) {
	switch k := ReportKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ReportSummary, ReportApprovals, ReportSchedule:
		return k, nil
	case "reports":
		return ReportSummary, nil
	default:
		return "", ErrUnknownReport
	}
}

// Report is one of SummaryReport, ApprovalsReport or ScheduleReport.
type Report interface {
	Kind() ReportKind
	report()
}

// SummaryReport breaks expenses down by status and category.
type SummaryReport struct {
	TotalTransactions int
	Statuses          StatusBreakdown
	Categories        []CategoryStat
	TopCategories     []CategoryStat
}

// ApprovalsReport lists the expenses awaiting approval.
type ApprovalsReport struct {
	Pending []Expense
}

// ScheduleReport lists expenses dated today or later.
type ScheduleReport struct {
	Upcoming []Expense
}

func (SummaryReport) Kind() ReportKind   { return ReportSummary }
func (ApprovalsReport) Kind() ReportKind { return ReportApprovals }
func (ScheduleReport) Kind() ReportKind  { return ReportSchedule }

func (SummaryReport) report()   {}
func (ApprovalsReport) report() {}
func (ScheduleReport) report()  {}

// ReportOptions tunes report sizes. Zero fields fall back to the defaults.
type ReportOptions struct {
	TopCategories int
	UpcomingLimit int
}

func (o ReportOptions) withDefaults() ReportOptions {
	if o.TopCategories == 0 {
		o.TopCategories = DefaultTopCategories
	}
	if o.UpcomingLimit == 0 {
		o.UpcomingLimit = DefaultUpcomingLimit
	}
	return o
}

// BuildReport computes the report of the given kind.
func BuildReport(kind ReportKind, expenses []Expense, categories []Category, now time.Time, opts ReportOptions) (Report, error) {
	opts = opts.withDefaults()
	switch kind {
	case ReportSummary:
		breakdown := CategoryBreakdown(expenses, categories)
		return SummaryReport{
			TotalTransactions: len(expenses),
			Statuses:          StatusBreakdownOf(expenses),
			Categories:        breakdown,
			TopCategories:     TopCategories(breakdown, opts.TopCategories),
		}, nil
	case ReportApprovals:
		return ApprovalsReport{Pending: FilterByStatus(expenses, StatusFilter(StatusPending))}, nil
	case ReportSchedule:
		return ScheduleReport{Upcoming: UpcomingExpenses(expenses, now, opts.UpcomingLimit)}, nil
	default:
		return nil, ErrUnknownReport
	}
}
