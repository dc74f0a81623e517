package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Login and registration metrics
	LoginAttemptsTotal         *prometheus.CounterVec
	AccountsCreatedTotal       prometheus.Counter
	CreateConflictRetriesTotal prometheus.Counter

	// Token metrics
	TokensIssuedTotal   prometheus.Counter
	TokensPurgedTotal   prometheus.Counter
	IntrospectionsTotal *prometheus.CounterVec

	// Token cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wharf_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wharf_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wharf_login_attempts_total",
				Help: "Total number of login or registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		AccountsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wharf_accounts_created_total",
				Help: "Total number of accounts created",
			},
		),
		CreateConflictRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wharf_create_conflict_retries_total",
				Help: "Total number of login retries after a creation name conflict",
			},
		),

		TokensIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wharf_tokens_issued_total",
				Help: "Total number of bearer tokens issued",
			},
		),
		TokensPurgedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wharf_tokens_purged_total",
				Help: "Total number of expired tokens purged",
			},
		),
		IntrospectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wharf_introspections_total",
				Help: "Total number of token introspections by status",
			},
			[]string{"status"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wharf_cache_hits_total",
				Help: "Total number of token cache hits",
			},
			[]string{"tier"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wharf_cache_misses_total",
				Help: "Total number of token cache misses",
			},
			[]string{"tier"},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wharf_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wharf_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginAttemptsTotal,
		m.AccountsCreatedTotal,
		m.CreateConflictRetriesTotal,
		m.TokensIssuedTotal,
		m.TokensPurgedTotal,
		m.IntrospectionsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
