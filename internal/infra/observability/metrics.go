package observability

import (
	"time"

	"github.com/boddenberg/isp-portal-bff/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the portal.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	upstreamErrors    *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	invoicesByStatus  *prometheus.CounterVec
	authAttempts      *prometheus.CounterVec
	commandsForwarded *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_request_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_upstream_errors_total",
				Help: "Total failed or degraded calls to the billing system, by resource.",
			},
			[]string{"resource"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		invoicesByStatus: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_invoices_classified_total",
				Help: "Invoices classified, by derived status.",
			},
			[]string{"status"},
		),
		authAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_auth_attempts_total",
				Help: "Login attempts, by outcome.",
			},
			[]string{"outcome"},
		),
		commandsForwarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_commands_total",
				Help: "Self-service commands forwarded upstream, by command and result.",
			},
			[]string{"command", "result"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(resource string) {
	m.upstreamErrors.WithLabelValues(resource).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrInvoiceStatus counts one classified invoice.
func (m *Metrics) IncrInvoiceStatus(status domain.InvoiceStatus) {
	m.invoicesByStatus.WithLabelValues(string(status)).Inc()
}

// IncrAuth counts a login attempt (success, invalid, unavailable).
func (m *Metrics) IncrAuth(outcome string) {
	m.authAttempts.WithLabelValues(outcome).Inc()
}

// IncrCommand counts a forwarded command.
func (m *Metrics) IncrCommand(command, result string) {
	m.commandsForwarded.WithLabelValues(command, result).Inc()
}

// UpstreamErrors returns the current upstream error count for a resource.
func (m *Metrics) UpstreamErrors(resource string) float64 {
	return getCounterValue(m.upstreamErrors, resource)
}

// AuthAttempts returns the current login attempt count for an outcome.
func (m *Metrics) AuthAttempts(outcome string) float64 {
	return getCounterValue(m.authAttempts, outcome)
}

// CacheHits returns the current hit count for a cache.
func (m *Metrics) CacheHits(cache string) float64 {
	return getCounterValue(m.cacheHits, cache)
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
