package telemetry

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.CacheLookup("hit")
	m.CacheLookup("hit")
	m.CacheLookup("miss")
	m.SourceFetched("fetch-error")
	m.StoreFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("fetch-error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeFailures))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.CacheLookup("hit")
	m.ProviderAttempt("duckduckgo", "ok")
	m.SummaryEntry("summarized")
	m.ObservePipeline("hit", time.Now())
	assert.Nil(t, m.Registry())
}

func TestMetricsHandlerExposesPipelineSeries(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.ProviderAttempt("google", "empty")
	m.ObservePipeline("miss", time.Now().Add(-time.Second))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `searchagent_provider_attempts_total{outcome="empty",provider="google"} 1`)
	assert.Contains(t, body, "searchagent_pipeline_duration_seconds_count")
}
