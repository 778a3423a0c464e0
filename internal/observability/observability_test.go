package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allMetrics() config.CustomMetricsConfig {
	return config.CustomMetricsConfig{
		Analysis:       config.AnalysisMetricsConfig{Enabled: true, TrackDuration: true, TrackScores: true, TrackDocuments: true},
		Grammar:        config.GrammarMetricsConfig{Enabled: true, TrackDuration: true},
		Infrastructure: config.InfrastructureMetricsConfig{Enabled: true, TrackCertReloads: true},
	}
}

func TestGetObservabilityConfig(t *testing.T) {
	t.Run("nil config falls back to defaults", func(t *testing.T) {
		cfg := GetObservabilityConfig(nil, "1.2.3")
		assert.Equal(t, "resumelens", cfg.ServiceName)
		assert.Equal(t, "1.2.3", cfg.ServiceVersion)
		assert.True(t, cfg.Prometheus.Enabled)
		assert.Equal(t, "/metrics", cfg.Prometheus.Endpoint)
	})

	t.Run("service version defaults to app version", func(t *testing.T) {
		full := &config.Config{}
		full.Observability.ServiceName = "svc"
		full.Observability.Metrics.Enabled = true
		full.Observability.Prometheus.Enabled = true
		cfg := GetObservabilityConfig(full, "dev")
		assert.Equal(t, "svc", cfg.ServiceName)
		assert.Equal(t, "dev", cfg.ServiceVersion)
		assert.True(t, cfg.Prometheus.Enabled)
	})

	t.Run("disabled metrics disable prometheus", func(t *testing.T) {
		full := &config.Config{}
		full.Observability.ServiceVersion = "9.9"
		full.Observability.Prometheus.Enabled = true
		cfg := GetObservabilityConfig(full, "dev")
		assert.Equal(t, "9.9", cfg.ServiceVersion)
		assert.False(t, cfg.Prometheus.Enabled)
	})
}

func TestObservabilityManagerDisabled(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false}, nil)
	require.NoError(t, err)

	assert.NotNil(t, om.Tracer("test"))
	assert.NotNil(t, om.GetMetrics())
	assert.Nil(t, om.GetMetrics().AnalysesTotal)
	assert.NoError(t, om.Shutdown(context.Background()))
}

func TestObservabilityManagerEnabled(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{
		ServiceName:    "resumelens-test",
		ServiceVersion: "test",
		Enabled:        true,
		SampleRate:     1.0,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	m := om.GetMetrics()
	assert.NotNil(t, m.AnalysesTotal)
	assert.NotNil(t, m.GrammarRequests)
	assert.NotNil(t, m.CertReloadCount)

	_, span := om.Tracer("test").Start(context.Background(), "op")
	span.End()

	rec := NewRecorder(om, allMetrics())
	rec.RecordAnalysis(context.Background(), "pdf", time.Second, &types.AnalysisResult{Score: 70}, nil)
	rec.RecordGrammarRequest(context.Background(), "languagetool", time.Millisecond, nil)
	assert.Equal(t, int64(1), rec.Snapshot().Analyses)
}

func TestRecorderCounters(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(nil, allMetrics())

	rec.RecordAnalysis(ctx, "pdf", time.Second, &types.AnalysisResult{Score: 50}, nil)
	rec.RecordAnalysis(ctx, "docx", time.Second, nil, errors.New("boom"))
	rec.RecordDegraded(ctx, "nlp")
	rec.RecordGrammarRequest(ctx, "gemini", time.Second, errors.New("down"))
	rec.RecordGrammarRequest(ctx, "gemini", time.Second, nil)
	rec.RecordCertReload(ctx, true, time.Now().Add(time.Hour))
	rec.RecordCertReload(ctx, false, time.Time{})

	assert.Equal(t, Counters{
		Analyses:      2,
		Failures:      1,
		Degraded:      1,
		GrammarCalls:  2,
		GrammarErrors: 1,
		CertReloads:   1,
	}, rec.Snapshot())
}

func TestPrometheusExporterDisabled(t *testing.T) {
	reader, mux, err := SetupPrometheusExporter(PrometheusConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, reader)
	assert.Nil(t, mux)
	assert.Nil(t, StartPrometheusServer(nil, "0"))
}

func TestPrometheusExporterServesEndpoint(t *testing.T) {
	reader, mux, err := SetupPrometheusExporter(PrometheusConfig{Enabled: true, Endpoint: "/scrape"})
	require.NoError(t, err)
	require.NotNil(t, reader)
	require.NotNil(t, mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scrape", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
