// Package metrics defines the Prometheus metric collectors used across the
// platform and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform. A nil *Metrics is
// valid and records nothing, so library code can take one unconditionally.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   *prometheus.HistogramVec
	StrategyLatency      *prometheus.HistogramVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	PagesIndexed         *prometheus.GaugeVec
	VocabularySize       prometheus.Gauge
	IndexBuildDuration   *prometheus.HistogramVec
	IndexBuildsTotal     *prometheus.CounterVec
	IndexReloadsTotal    *prometheus.CounterVec
}

// New creates all collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all collectors and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by strategy and outcome (ok, empty, zero_result, error).",
			},
			[]string{"mode", "result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search latency in seconds by strategy and cache status.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"mode", "cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per strategy per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
			[]string{"strategy"},
		),
		StrategyLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_strategy_latency_seconds",
				Help:    "Retriever latency in seconds by strategy (lexical, semantic).",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"strategy"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		PagesIndexed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pages_indexed",
				Help: "Number of corpus pages in the most recently built or loaded index.",
			},
			[]string{"index"},
		),
		VocabularySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lexical_vocabulary_size",
				Help: "Number of terms in the lexical index vocabulary.",
			},
		),
		IndexBuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "index_build_duration_seconds",
				Help:    "Index build duration in seconds by stage.",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"stage"},
		),
		IndexBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_builds_total",
				Help: "Total index builds by status.",
			},
			[]string{"status"},
		),
		IndexReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_reloads_total",
				Help: "Total index loads and reloads by status.",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.StrategyLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.PagesIndexed,
		m.VocabularySize,
		m.IndexBuildDuration,
		m.IndexBuildsTotal,
		m.IndexReloadsTotal,
	)

	return m
}

// ObserveSearch records one search request.
func (m *Metrics) ObserveSearch(mode, resultType, cacheStatus string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(mode, resultType).Inc()
	m.SearchLatency.WithLabelValues(mode, cacheStatus).Observe(elapsed.Seconds())
}

// ObserveResults records how many results one strategy returned.
func (m *Metrics) ObserveResults(strategy string, n int) {
	if m == nil {
		return
	}
	m.SearchResultsCount.WithLabelValues(strategy).Observe(float64(n))
}

// ObserveStrategy records how long one retriever took for a query.
func (m *Metrics) ObserveStrategy(strategy string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StrategyLatency.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// ObserveCache records a result cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
		return
	}
	m.CacheMissesTotal.Inc()
}

// ObserveBuildStage records the duration of one build stage.
func (m *Metrics) ObserveBuildStage(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.IndexBuildDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveBuild records a finished build attempt.
func (m *Metrics) ObserveBuild(err error) {
	if m == nil {
		return
	}
	m.IndexBuildsTotal.WithLabelValues(status(err)).Inc()
}

// ObserveReload records an index load attempt.
func (m *Metrics) ObserveReload(err error) {
	if m == nil {
		return
	}
	m.IndexReloadsTotal.WithLabelValues(status(err)).Inc()
}

// SetIndexSize publishes the size of a loaded or built index.
func (m *Metrics) SetIndexSize(pages, vocabulary int) {
	if m == nil {
		return
	}
	m.PagesIndexed.WithLabelValues("lexical").Set(float64(pages))
	m.PagesIndexed.WithLabelValues("semantic").Set(float64(pages))
	m.VocabularySize.Set(float64(vocabulary))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
