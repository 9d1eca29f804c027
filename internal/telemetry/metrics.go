package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "searchagent"

// Metrics groups the pipeline collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	cacheLookups     *prometheus.CounterVec
	acquisitions     *prometheus.CounterVec
	fetches          *prometheus.CounterVec
	summaryEntries   *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	storeFailures    prometheus.Counter
}

// NewMetrics registers the pipeline collectors on a fresh registry that also
// carries the Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Semantic cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Search provider attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Per-URL fetch results by status.",
		}, []string{"status"}),
		summaryEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_entries_total",
			Help:      "Summary entries by outcome.",
		}, []string{"outcome"}),
		pipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end pipeline duration by path (hit, miss, failed).",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"path"}),
		storeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_store_failures_total",
			Help:      "Failed appends to the record store after a successful run.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cacheLookups,
		m.acquisitions,
		m.fetches,
		m.summaryEntries,
		m.pipelineDuration,
		m.storeFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ProviderAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.acquisitions.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) SourceFetched(status string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(status).Inc()
}

func (m *Metrics) SummaryEntry(outcome string) {
	if m == nil {
		return
	}
	m.summaryEntries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StoreFailed() {
	if m == nil {
		return
	}
	m.storeFailures.Inc()
}

// ObservePipeline records the elapsed time since start under path.
func (m *Metrics) ObservePipeline(path string, start time.Time) {
	if m == nil {
		return
	}
	m.pipelineDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
}
