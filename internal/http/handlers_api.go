package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"kharcha/internal/core"
	applog "kharcha/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	expenses, err := s.svc.Expenses(r.Context(), q)
	if err != nil {
		s.serviceError(w, r, err, applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": toExpensesJSON(expenses),
		"count":    len(expenses),
	})
}

func (s *Server) handleCreateExpenseAPI(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	created, err := s.svc.AddExpense(r.Context(), p.ExpenseInput())
	if err != nil {
		s.serviceError(w, r, err, applog.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseJSON(created))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.serviceError(w, r, err, applog.OpStats)
		return
	}
	writeJSON(w, http.StatusOK, toStatsJSON(stats))
}

// handleCategories lists every category with its running total.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.CategoryList(r.Context())
	if err != nil {
		s.serviceError(w, r, err, applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": toCategoryStatsJSON(stats)})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseReportKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	report, err := s.svc.Report(r.Context(), kind)
	if err != nil {
		s.serviceError(w, r, err, applog.OpReport)
		return
	}
	writeJSON(w, http.StatusOK, toReportEnvelope(report))
}

func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.events.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op,
			applog.NewFields().WithErrorType(applog.ErrorTypeDatabase))
	}
	writeError(w, status, publicMessage(err))
}
