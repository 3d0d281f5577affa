package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kharcha/internal/core"
	"kharcha/internal/format"
	applog "kharcha/internal/log"
)

type expenseForm struct {
	Title       string
	Amount      string
	Date        string
	Description string
	Categories  []core.Category
}

type dashboardPage struct {
	Stats         core.Stats
	Categories    []core.CategoryStat
	Expenses      []core.Expense
	Query         core.Query
	StatusFilters []core.StatusFilter
	ReportKinds   []core.ReportKind
	Form          expenseForm
}

var statusFilters = []core.StatusFilter{
	core.AllStatuses,
	core.StatusFilter(core.StatusPending),
	core.StatusFilter(core.StatusApproved),
	core.StatusFilter(core.StatusRejected),
}

// fragment executes name into a string so a template failure still yields
// a clean 500.
func (s *Server) fragment(r *http.Request, name string, data any) (string, bool) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.LogError(r.Context(), "Template execution failed", fmt.Errorf("%s: %w", name, err),
			applog.ComponentTemplate, applog.OpRender, nil)
		return "", false
	}
	return buf.String(), true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	html, ok := s.fragment(r, name, data)
	if !ok {
		InternalServerError("Could not render page").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(html).Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	ctx := r.Context()
	stats, err := s.svc.Stats(ctx)
	if err != nil {
		s.uiError(w, r, err, applog.OpStats)
		return
	}
	expenses, err := s.svc.Expenses(ctx, q)
	if err != nil {
		s.uiError(w, r, err, applog.OpList)
		return
	}
	totals, err := s.svc.CategoryList(ctx)
	if err != nil {
		s.uiError(w, r, err, applog.OpList)
		return
	}
	categories, err := s.svc.Categories(ctx)
	if err != nil {
		s.uiError(w, r, err, applog.OpList)
		return
	}

	s.render(w, r, "dashboard_page", dashboardPage{
		Stats:         stats,
		Categories:    totals,
		Expenses:      expenses,
		Query:         q,
		StatusFilters: statusFilters,
		ReportKinds:   core.ReportKinds(),
		Form: expenseForm{
			Date:       core.DateOf(s.now()).String(),
			Categories: categories,
		},
	})
}

func (s *Server) handleStatsPartial(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.uiError(w, r, err, applog.OpStats)
		return
	}
	s.render(w, r, "stat_cards", stats)
}

// handleCategoriesPartial renders the sidebar of per-category running totals.
func (s *Server) handleCategoriesPartial(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.CategoryList(r.Context())
	if err != nil {
		s.uiError(w, r, err, applog.OpList)
		return
	}
	s.render(w, r, "category_totals", totals)
}

func (s *Server) handleTransactionsPartial(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	expenses, err := s.svc.Expenses(r.Context(), q)
	if err != nil {
		s.uiError(w, r, err, applog.OpList)
		return
	}
	s.render(w, r, "transactions", expenses)
}

func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseReportKind(chi.URLParam(r, "kind"))
	if err != nil {
		NotFoundError(err.Error()).Write(w)
		return
	}
	report, err := s.svc.Report(r.Context(), kind)
	if err != nil {
		s.uiError(w, r, err, applog.OpReport)
		return
	}
	s.render(w, r, "report_"+string(kind), report)
}

// handleCreateExpense is the htmx form endpoint. On success the body is
// empty and the page refreshes itself through HX-Trigger events. Validation
// failures come back as a 422 form_errors fragment; app.js lets htmx swap it.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	created, err := s.svc.AddExpense(r.Context(), p.ExpenseInput())
	if err != nil {
		if statusFor(err) != http.StatusUnprocessableEntity {
			s.uiError(w, r, err, applog.OpCreate)
			return
		}
		msg := publicMessage(err)
		html, ok := s.fragment(r, "form_errors", msg)
		if !ok {
			InternalServerError("Could not render page").Write(w)
			return
		}
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification(msg).
			BodyHTML(html).
			Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpenseCreated(created.ID).
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Added %s: %s (%s)",
			created.Title, format.Rupees(created.Amount), created.Category.Name)).
		Write(w)
}

func (s *Server) uiError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.events.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, nil)
	}
	ErrorResponse(status, publicMessage(err)).Write(w)
}
