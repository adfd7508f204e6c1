package observability

import (
	"time"

	"resumalyzer/internal/config"
)

// ObservabilityConfig holds the settings the manager needs
type ObservabilityConfig struct {
	ServiceName     string
	ServiceVersion  string
	ServiceInstance string
	Enabled         bool
	TracingEnabled  bool
	MetricsEnabled  bool
	ConsoleOutput   bool
	PrettyPrint     bool
	SampleRate      float64
	Interval        time.Duration
	Prometheus      PrometheusConfig
	OTLP            OTLPConfig
}

// OTLPConfig holds the OTLP HTTP exporter settings
type OTLPConfig struct {
	Enabled  bool
	Endpoint string
	Insecure bool
	Headers  map[string]string
}

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		// Fallback to defaults if config not available
		return ObservabilityConfig{
			ServiceName:    "resumalyzer",
			ServiceVersion: version,
			Enabled:        true,
			TracingEnabled: true,
			MetricsEnabled: true,
			PrettyPrint:    true,
			SampleRate:     1.0,
			Interval:       15 * time.Second,
			Prometheus:     GetPrometheusConfig(nil),
		}
	}

	obs := cfg.Observability

	// Use app version if service version not specified
	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	sampleRate := obs.Tracing.SampleRate
	if sampleRate <= 0 {
		sampleRate = obs.SampleRate
	}

	return ObservabilityConfig{
		ServiceName:     obs.ServiceName,
		ServiceVersion:  serviceVersion,
		ServiceInstance: obs.ServiceInstance,
		Enabled:         obs.Enabled,
		TracingEnabled:  obs.Tracing.Enabled,
		MetricsEnabled:  obs.Metrics.Enabled,
		ConsoleOutput:   obs.Console.Enabled,
		PrettyPrint:     obs.Console.PrettyPrint,
		SampleRate:      sampleRate,
		Interval:        obs.Metrics.CollectionInterval,
		Prometheus:      GetPrometheusConfig(cfg),
		OTLP: OTLPConfig{
			Enabled:  obs.OTLP.Enabled,
			Endpoint: obs.OTLP.Endpoint,
			Insecure: obs.OTLP.Insecure,
			Headers:  obs.OTLP.Headers,
		},
	}
}
