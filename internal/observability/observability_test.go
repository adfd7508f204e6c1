package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"resumalyzer/internal/config"
	"resumalyzer/internal/schema"
	"resumalyzer/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]metricdata.Sum[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				sums[m.Name] = sum
			}
		}
	}
	return sums
}

func TestContractMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	c, err := NewContractMetrics(mp.Meter("test"), nil)
	require.NoError(t, err)

	c.DefaultApplied(schema.DefaultApplied{Task: "critique", Field: "score", Reason: schema.ReasonClamped})
	c.DefaultApplied(schema.DefaultApplied{Task: "critique", Field: "score", Reason: schema.ReasonClamped})
	c.DefaultApplied(schema.DefaultApplied{Task: "critique", Field: "summary", Reason: schema.ReasonMissing})
	c.FallbackUsed(types.TaskRoast, "provider")

	sums := collect(t, reader)

	defaults, ok := sums["resumalyzer_schema_defaults_total"]
	require.True(t, ok)
	var total int64
	for _, dp := range defaults.DataPoints {
		total += dp.Value
		if v, _ := dp.Attributes.Value(attribute.Key("field")); v.AsString() == "score" {
			assert.Equal(t, int64(2), dp.Value)
		}
	}
	assert.Equal(t, int64(3), total)

	fallbacks, ok := sums["resumalyzer_fallbacks_total"]
	require.True(t, ok)
	require.Len(t, fallbacks.DataPoints, 1)
	reason, _ := fallbacks.DataPoints[0].Attributes.Value(attribute.Key("reason"))
	assert.Equal(t, "provider", reason.AsString())
}

func TestNilManagerContract(t *testing.T) {
	var om *ObservabilityManager
	assert.NotPanics(t, func() {
		om.Contract().DefaultApplied(schema.DefaultApplied{Task: "chat"})
		om.Contract().FallbackUsed(types.TaskChat, "internal")
	})
}

func TestGetObservabilityConfig(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		got := GetObservabilityConfig(nil, "1.2.3")
		assert.Equal(t, "resumalyzer", got.ServiceName)
		assert.Equal(t, "1.2.3", got.ServiceVersion)
		assert.True(t, got.Prometheus.Enabled)
		assert.Equal(t, "/metrics", got.Prometheus.Endpoint)
	})

	t.Run("config values", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Observability.Enabled = true
		cfg.Observability.ServiceName = "svc"
		cfg.Observability.SampleRate = 0.5
		cfg.Observability.Console.Enabled = true
		cfg.Observability.Prometheus.Enabled = true
		cfg.Observability.OTLP.Endpoint = "http://collector:4318"

		got := GetObservabilityConfig(cfg, "dev")
		assert.Equal(t, "svc", got.ServiceName)
		assert.Equal(t, "dev", got.ServiceVersion)
		assert.True(t, got.ConsoleOutput)
		assert.InDelta(t, 0.5, got.SampleRate, 1e-9)
		assert.Equal(t, "/metrics", got.Prometheus.Endpoint)
		assert.Equal(t, "http://collector:4318", got.OTLP.Endpoint)
	})
}

func TestDisabledManager(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{ServiceName: "resumalyzer"}, nil)
	require.NoError(t, err)
	assert.Nil(t, om.MetricsHandler())

	h := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	om.GetMetrics().RecordBusinessMetric(context.Background(), MetricRateLimitHit, false)
	assert.NoError(t, om.Shutdown(context.Background()))
}

func TestPrometheusHandlerServesContractCounters(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{
		ServiceName:    "resumalyzer",
		Enabled:        true,
		MetricsEnabled: true,
		SampleRate:     1,
		Prometheus:     PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	om.Contract().FallbackUsed(types.TaskCritique, "malformed_response")

	handler := om.MetricsHandler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resumalyzer_fallbacks_total")
	assert.Contains(t, rec.Body.String(), `reason="malformed_response"`)
}
