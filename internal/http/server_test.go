package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
	"kharcha/internal/services"
	"kharcha/internal/store/memory"
)

var testNow = time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	svc := services.NewExpenseService(memory.NewSeeded(), services.Options{
		Clock: core.ClockFunc(func() time.Time { return testNow }),
	})
	cfg.Now = func() time.Time { return testNow }
	srv, err := NewServer(cfg, svc)
	require.NoError(t, err)
	t.Cleanup(srv.limiter.Stop)
	return srv
}

func do(srv *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type listResponse struct {
	Expenses []expenseJSON `json:"expenses"`
	Count    int           `json:"count"`
}

func listIDs(l listResponse) []string {
	out := []string{}
	for _, e := range l.Expenses {
		out = append(out, e.ID)
	}
	return out
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, Config{})
	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rr := do(srv, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, want, rr.Body.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, Config{})
	rr := do(srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))
}

func TestListExpenses(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := do(srv, http.MethodGet, "/api/expenses", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[listResponse](t, rr)
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, []string{"1", "2", "3"}, listIDs(list))

	first := list.Expenses[0]
	assert.Equal(t, "Office Supplies Purchase", first.Title)
	assert.Equal(t, int64(250000), first.AmountCents)
	assert.Equal(t, "Rs. 2,500", first.Amount)
	assert.Equal(t, "2024-01-15", first.Date.String())
	assert.Equal(t, core.StatusApproved, first.Status)
	assert.Equal(t, "Office Supplies", first.Category.Name)
}

func TestListExpensesFilters(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := do(srv, http.MethodGet, "/api/expenses?q=TEAM&status=approved", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"3"}, listIDs(decode[listResponse](t, rr)))

	rr = do(srv, http.MethodGet, "/api/expenses?status=pending", "", "")
	assert.Equal(t, []string{"2"}, listIDs(decode[listResponse](t, rr)))

	rr = do(srv, http.MethodGet, "/api/expenses?status=archived", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateExpenseAPI(t *testing.T) {
	srv := newTestServer(t, Config{})

	body := `{"title":"Printer ink","amount":1250.5,"category_id":"1","date":"2024-01-16","description":"Black cartridges"}`
	rr := do(srv, http.MethodPost, "/api/expenses", "application/json", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	created := decode[expenseJSON](t, rr)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, core.StatusPending, created.Status)
	assert.Equal(t, int64(125050), created.AmountCents)
	assert.Equal(t, "Rs. 1,250.50", created.Amount)

	rr = do(srv, http.MethodGet, "/api/expenses", "", "")
	list := decode[listResponse](t, rr)
	require.Equal(t, 4, list.Count)
	assert.Equal(t, created.ID, list.Expenses[0].ID, "new expense is listed first")

	rr = do(srv, http.MethodGet, "/api/stats", "", "")
	stats := decode[statsJSON](t, rr)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, int64(1545050), stats.TotalCents)
}

func TestCreateExpenseAPIErrors(t *testing.T) {
	srv := newTestServer(t, Config{})

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"title":`, http.StatusBadRequest},
		{"empty title", `{"title":"  ","amount":"10","category_id":"1","date":"2024-01-16"}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"title":"x","amount":"-5","category_id":"1","date":"2024-01-16"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"title":"x","amount":"5","category_id":"1","date":"16/01/2024"}`, http.StatusUnprocessableEntity},
		{"unknown category", `{"title":"x","amount":"5","category_id":"99","date":"2024-01-16"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(srv, http.MethodPost, "/api/expenses", "application/json", tc.body)
			assert.Equal(t, tc.want, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decode[errorBody](t, rr).Error)
		})
	}

	rr := do(srv, http.MethodGet, "/api/expenses", "", "")
	assert.Equal(t, 3, decode[listResponse](t, rr).Count, "failed adds leave the store untouched")
}

func TestStatsAndCategories(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := do(srv, http.MethodGet, "/api/stats", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[statsJSON](t, rr)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, "Rs. 14,200", stats.Total)
	assert.Equal(t, int64(1420000), stats.MonthlyCents)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, "Rs. 4,733.33", stats.AverageText)

	rr = do(srv, http.MethodGet, "/api/categories", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	cats := decode[struct {
		Categories []categoryStatJSON `json:"categories"`
	}](t, rr)
	require.Len(t, cats.Categories, 6)
	assert.Equal(t, "Travel", cats.Categories[1].Name)
	assert.Equal(t, int64(850000), cats.Categories[1].TotalCents)
	assert.Equal(t, 0, cats.Categories[5].Count)
}

func TestReports(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := do(srv, http.MethodGet, "/api/reports/summary", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	summary := decode[struct {
		Kind string      `json:"kind"`
		Data summaryJSON `json:"data"`
	}](t, rr)
	assert.Equal(t, "summary", summary.Kind)
	assert.Equal(t, 3, summary.Data.TotalTransactions)
	assert.Equal(t, statusBreakdownJSON{Approved: 2, Pending: 1}, summary.Data.Statuses)
	require.Len(t, summary.Data.TopCategories, 3)
	assert.Equal(t, "Travel", summary.Data.TopCategories[0].Name)

	rr = do(srv, http.MethodGet, "/api/reports/reports", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, core.ReportSummary, decode[reportEnvelope](t, rr).Kind)

	rr = do(srv, http.MethodGet, "/api/reports/approvals", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	approvals := decode[struct {
		Data struct {
			Pending []expenseJSON `json:"pending"`
		} `json:"data"`
	}](t, rr)
	require.Len(t, approvals.Data.Pending, 1)
	assert.Equal(t, "2", approvals.Data.Pending[0].ID)

	rr = do(srv, http.MethodGet, "/api/reports/schedule", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	schedule := decode[struct {
		Data struct {
			Upcoming []expenseJSON `json:"upcoming"`
		} `json:"data"`
	}](t, rr)
	require.Len(t, schedule.Data.Upcoming, 2)
	assert.Equal(t, "2", schedule.Data.Upcoming[0].ID, "today is included")
	assert.Equal(t, "1", schedule.Data.Upcoming[1].ID)

	rr = do(srv, http.MethodGet, "/api/reports/weekly", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDashboardPage(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := do(srv, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	for _, want := range []string{"Kharcha", "Rs. 14,200", "Business Trip to Pokhara", "Jan 14, 2024", "Pending", `value="2024-01-14"`, "Software"} {
		assert.Contains(t, body, want)
	}
}

func TestTransactionsPartial(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := do(srv, http.MethodGet, "/ui/transactions?q=pokhara", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Business Trip to Pokhara")
	assert.NotContains(t, rr.Body.String(), "Team Lunch")

	rr = do(srv, http.MethodGet, "/ui/transactions?status=rejected", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No expenses match.")
}

func TestReportPartials(t *testing.T) {
	srv := newTestServer(t, Config{})

	for path, want := range map[string]string{
		"/ui/reports/summary":   "Top categories",
		"/ui/reports/approvals": "Business Trip to Pokhara",
		"/ui/reports/schedule":  "Office Supplies Purchase",
	} {
		rr := do(srv, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Contains(t, rr.Body.String(), want, path)
	}

	rr := do(srv, http.MethodGet, "/ui/reports/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateExpenseForm(t *testing.T) {
	srv := newTestServer(t, Config{})

	form := url.Values{
		"title":       {"Coffee beans"},
		"amount":      {"450"},
		"category_id": {"3"},
		"date":        {"2024-01-14"},
	}
	rr := do(srv, http.MethodPost, "/expenses", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	trigger := rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, `"expense:created"`)
	assert.Contains(t, trigger, `"form:reset"`)
	assert.Contains(t, trigger, "Coffee beans")

	rr = do(srv, http.MethodGet, "/ui/transactions", "", "")
	assert.Contains(t, rr.Body.String(), "Coffee beans")

	form.Set("amount", "abc")
	rr = do(srv, http.MethodPost, "/expenses", "application/x-www-form-urlencoded", form.Encode())
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), `<div class="error">`)
	assert.Contains(t, rr.Body.String(), "invalid amount")
	trigger = rr.Header().Get("HX-Trigger")
	assert.Contains(t, trigger, `"show-notification"`)
	assert.Contains(t, trigger, `"type":"error"`)
	assert.NotContains(t, trigger, `"expense:created"`)
	assert.NotContains(t, trigger, `"form:reset"`)
}

func TestCreateExpenseFormEscapesErrors(t *testing.T) {
	srv := newTestServer(t, Config{})

	form := url.Values{
		"title":       {"Coffee"},
		"amount":      {"<b>9</b>"},
		"category_id": {"3"},
		"date":        {"2024-01-14"},
	}
	rr := do(srv, http.MethodPost, "/expenses", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<b>")
	assert.Contains(t, rr.Body.String(), "&lt;b&gt;")
}

func TestDashboardListenersAreServed(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := do(srv, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<script src="/static/app.js" defer></script>`)
	assert.Contains(t, rr.Body.String(), `id="notifications"`)

	rr = do(srv, http.MethodGet, "/static/app.js", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	js := rr.Body.String()
	for _, event := range []string{"htmx:beforeSwap", "form:reset", "show-notification"} {
		assert.Contains(t, js, event)
	}
	assert.Contains(t, js, "422")
}

func TestCategoryTotals(t *testing.T) {
	srv := newTestServer(t, Config{})

	rr := do(srv, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `hx-get="/ui/categories" hx-trigger="expense:created from:body"`)
	for _, want := range []string{"Office Supplies", "Rs. 2,500", "Travel", "Rs. 8,500", "Meals", "Rs. 3,200", "Marketing", "Utilities"} {
		assert.Contains(t, body, want)
	}

	form := url.Values{
		"title":       {"Taxi"},
		"amount":      {"500"},
		"category_id": {"2"},
		"date":        {"2024-01-14"},
	}
	rr = do(srv, http.MethodPost, "/expenses", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(srv, http.MethodGet, "/ui/categories", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	partial := rr.Body.String()
	assert.Contains(t, partial, "Travel")
	assert.Contains(t, partial, "Rs. 9,000")
	assert.Equal(t, 6, strings.Count(partial, "<li>"))
}

func TestRateLimitOnWrites(t *testing.T) {
	srv := newTestServer(t, Config{RateLimitPerMinute: 2})

	body := `{"title":"x","amount":"1","category_id":"1","date":"2024-01-16"}`
	for i := 0; i < 2; i++ {
		rr := do(srv, http.MethodPost, "/api/expenses", "application/json", body)
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := do(srv, http.MethodPost, "/api/expenses", "application/json", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	rr = do(srv, http.MethodGet, "/api/expenses", "", "")
	assert.Equal(t, http.StatusOK, rr.Code, "reads are not limited")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{MetricsEnabled: true})
	do(srv, http.MethodGet, "/api/stats", "", "")

	rr := do(srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "kharcha_http_requests_total")

	srv = newTestServer(t, Config{})
	rr = do(srv, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, Config{})
	rr := do(srv, http.MethodGet, "/static/app.css", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Cache-Control"))
}

func TestSearchKeepsSurroundingSpaces(t *testing.T) {
	srv := newTestServer(t, Config{})

	// "Team Lunch" ends the title, so "lunch " with a trailing space matches nothing.
	rr := do(srv, http.MethodGet, "/api/expenses?q="+url.QueryEscape("lunch "), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[listResponse](t, rr).Count)

	rr = do(srv, http.MethodGet, "/api/expenses?q=lunch", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[listResponse](t, rr).Count)
}

func TestNewServerRejectsBadProxy(t *testing.T) {
	svc := services.NewExpenseService(memory.NewSeeded(), services.Options{})
	_, err := NewServer(Config{TrustedProxies: []string{"not-a-cidr"}}, svc)
	assert.Error(t, err)
}
