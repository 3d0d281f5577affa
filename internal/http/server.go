package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kharcha/internal/core"
	"kharcha/internal/format"
	applog "kharcha/internal/log"
	"kharcha/internal/metrics"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/middleware/security"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/services"
	appweb "kharcha/web"
)

// ExpenseService is what the handlers need from the application layer.
type ExpenseService interface {
	AddExpense(ctx context.Context, in services.ExpenseInput) (core.Expense, error)
	Expenses(ctx context.Context, q core.Query) ([]core.Expense, error)
	Stats(ctx context.Context) (core.Stats, error)
	Categories(ctx context.Context) ([]core.Category, error)
	CategoryList(ctx context.Context) ([]core.CategoryStat, error)
	Report(ctx context.Context, kind core.ReportKind) (core.Report, error)
}

type Config struct {
	Addr               string
	RateLimitPerMinute int
	MetricsEnabled     bool
	// TrustedProxies are CIDRs whose forwarding headers are believed, on top
	// of loopback and private ranges.
	TrustedProxies []string
	Logger         *applog.Logger
	// Now is the source of the default date in the add form.
	Now func() time.Time
}

type Server struct {
	http.Server
	templates  *template.Template
	svc        ExpenseService
	logger     *applog.Logger
	events     *applog.StructuredLogger
	limiter    *ratelimit.Limiter
	ipResolver *security.ClientIPResolver
	now        func() time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires every route, returning a
// ready-to-run server.
func NewServer(cfg Config, svc ExpenseService) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = applog.Discard()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	resolver := security.NewClientIPResolver()
	for _, cidr := range cfg.TrustedProxies {
		if err := resolver.AddTrustedProxy(cidr); err != nil {
			return nil, err
		}
	}

	t, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := cfg.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		templates:  t,
		svc:        svc,
		logger:     logger,
		events:     applog.NewStructuredLogger(logger),
		limiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		ipResolver: resolver,
		now:        cfg.Now,
	}
	s.Handler = s.routes(cfg.MetricsEnabled)
	return s, nil
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"rupees":  format.Rupees,
		"rupeesf": format.RupeesFloat,
		"date":    format.Date,
		"status":  format.Status,
		"title": func(v any) string {
			s := fmt.Sprint(v)
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
	return template.New("kharcha").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

func (s *Server) routes(metricsEnabled bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(applog.Middleware(s.logger, func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(trace.NewMiddleware(s.logger, s.ipResolver.ClientIP).Handler)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssets(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Only writes are rate limited.
	limited := s.limiter.Middleware(s.ipResolver.ClientIP, s.onRateLimited)

	r.Get("/", s.handleIndex)
	r.With(limited).Post("/expenses", s.handleCreateExpense)
	r.Route("/ui", func(r chi.Router) {
		r.Get("/stats", s.handleStatsPartial)
		r.Get("/categories", s.handleCategoriesPartial)
		r.Get("/transactions", s.handleTransactionsPartial)
		r.Get("/reports/{kind}", s.handleReportPartial)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/expenses", s.handleListExpenses)
		r.With(limited).Post("/expenses", s.handleCreateExpenseAPI)
		r.Get("/stats", s.handleStats)
		r.Get("/categories", s.handleCategories)
		r.Get("/reports/{kind}", s.handleReport)
	})

	return r
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RateLimited.Inc()
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.ipResolver.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)

	const msg = "Rate limit exceeded. Please try again later."
	if isAPIRequest(r) {
		writeError(w, http.StatusTooManyRequests, msg)
		return
	}
	ErrorResponse(http.StatusTooManyRequests, msg).Write(w)
}

// Shutdown stops the rate limiter and then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.Categories(r.Context()); err != nil {
		s.events.LogError(r.Context(), "Readiness check failed", err, applog.ComponentStorage, applog.OpList, nil)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
