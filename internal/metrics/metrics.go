package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	QueriesTotal    *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec
	QueriesInFlight prometheus.Gauge

	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	DedupSharedTotal prometheus.Counter

	BreakerState       *prometheus.GaugeVec
	BreakerRejectTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		QueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yurie_search_queries_total",
				Help: "Total number of federated queries processed",
			},
			[]string{"category", "status"},
		),
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yurie_search_query_duration_seconds",
				Help:    "Federated query duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"category"},
		),
		QueriesInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "yurie_search_queries_in_flight",
				Help: "Number of federated queries currently being processed",
			},
		),

		ProviderRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yurie_search_provider_requests_total",
				Help: "Total number of upstream provider requests",
			},
			[]string{"provider", "status"},
		),
		ProviderRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yurie_search_provider_request_duration_seconds",
				Help:    "Upstream provider request duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"provider"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "yurie_search_cache_hits_total",
				Help: "Total number of search cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "yurie_search_cache_misses_total",
				Help: "Total number of search cache misses",
			},
		),

		DedupSharedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "yurie_search_dedup_shared_total",
				Help: "Total number of calls that shared an in-flight execution",
			},
		),

		BreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "yurie_search_breaker_state",
				Help: "Circuit breaker state per provider (0=closed, 1=open, 2=half-open)",
			},
			[]string{"provider"},
		),
		BreakerRejectTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yurie_search_breaker_rejects_total",
				Help: "Total number of calls rejected by an open breaker",
			},
			[]string{"provider"},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordQuery(category, status string, duration time.Duration) {
	m.QueriesTotal.WithLabelValues(category, status).Inc()
	m.QueryDuration.WithLabelValues(category).Observe(duration.Seconds())
}

func (m *Metrics) RecordProviderRequest(provider, status string, duration time.Duration) {
	m.ProviderRequestsTotal.WithLabelValues(provider, status).Inc()
	m.ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordDedupShared() {
	m.DedupSharedTotal.Inc()
}

func (m *Metrics) SetBreakerState(provider string, state float64) {
	m.BreakerState.WithLabelValues(provider).Set(state)
}

func (m *Metrics) RecordBreakerReject(provider string) {
	m.BreakerRejectTotal.WithLabelValues(provider).Inc()
}

func (m *Metrics) IncQueriesInFlight() {
	m.QueriesInFlight.Inc()
}

func (m *Metrics) DecQueriesInFlight() {
	m.QueriesInFlight.Dec()
}
