// Package metrics holds the Prometheus collectors of the service. They are
// registered on the default registry and served by promhttp at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kharcha"

// ─── HTTP ───────────────────────────────────────────────────────────────────

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route pattern, method and status code.",
}, []string{"route", "method", "code"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route pattern.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})

var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the per-client rate limiter.",
})

// ─── Expenses ───────────────────────────────────────────────────────────────

var ExpensesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "expenses",
	Name:      "created_total",
	Help:      "Expenses added, by category.",
}, []string{"category"})

var ExpenseValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "expenses",
	Name:      "validation_failures_total",
	Help:      "Rejected expense submissions, by reason.",
}, []string{"reason"})

var ExpensesStored = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "expenses",
	Name:      "stored",
	Help:      "Number of expenses currently held in memory.",
})

var ReportsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reports",
	Name:      "built_total",
	Help:      "Reports computed, by kind.",
}, []string{"kind"})

// ─── Cache ──────────────────────────────────────────────────────────────────

var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Expense snapshot cache lookups by result (hit or miss).",
}, []string{"result"})

// ─── Events ─────────────────────────────────────────────────────────────────

var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "events",
	Name:      "published_total",
	Help:      "expense.created events by outcome (ok or error).",
}, []string{"outcome"})

// ObserveHTTP records one finished request.
func ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func CacheHit()  { CacheLookups.WithLabelValues("hit").Inc() }
func CacheMiss() { CacheLookups.WithLabelValues("miss").Inc() }

// EventOutcome counts a publish attempt.
func EventOutcome(err error) {
	if err != nil {
		EventsPublished.WithLabelValues("error").Inc()
		return
	}
	EventsPublished.WithLabelValues("ok").Inc()
}
