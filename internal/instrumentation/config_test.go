package instrumentation

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	for _, key := range []string{"OTEL_SERVICE_NAME", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER", "TRACING_EXPORTER", "OTEL_TRACES_SAMPLER_ARG"} {
		t.Setenv(key, "")
	}

	config := DefaultConfig()

	if config.ServiceName != "discal" {
		t.Errorf("expected ServiceName 'discal', got %q", config.ServiceName)
	}
	if !config.Enabled {
		t.Error("expected Enabled to be true by default")
	}
	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("expected MetricsExporter 'prometheus', got %q", config.MetricsExporter)
	}
	if config.TracingExporter != ExporterNone {
		t.Errorf("expected TracingExporter 'none', got %q", config.TracingExporter)
	}
	if config.TraceSamplingRate != 0.1 {
		t.Errorf("expected TraceSamplingRate 0.1, got %f", config.TraceSamplingRate)
	}
	if !config.AuditLogging.Enabled || config.AuditLogging.IncludePII {
		t.Errorf("unexpected audit defaults: %+v", config.AuditLogging)
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "test-service")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("METRICS_EXPORTER", "stdout")
	t.Setenv("TRACING_EXPORTER", "stdout")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("AUDIT_LOGGING_INCLUDE_PII", "true")

	config := DefaultConfig()

	if config.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %q", config.ServiceName)
	}
	if config.Enabled {
		t.Error("expected Enabled to be false")
	}
	if config.MetricsExporter != ExporterStdout || config.TracingExporter != ExporterStdout {
		t.Errorf("unexpected exporters %q/%q", config.MetricsExporter, config.TracingExporter)
	}
	if config.TraceSamplingRate != 0.5 {
		t.Errorf("expected TraceSamplingRate 0.5, got %f", config.TraceSamplingRate)
	}
	if !config.AuditLogging.IncludePII {
		t.Error("expected IncludePII from env")
	}
}

func TestDefaultConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("INSTRUMENTATION_ENABLED", "maybe")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "lots")

	config := DefaultConfig()

	if !config.Enabled {
		t.Error("invalid bool should fall back to default true")
	}
	if config.TraceSamplingRate != 0.1 {
		t.Errorf("invalid float should fall back to 0.1, got %f", config.TraceSamplingRate)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 0.1}, false},
		{"empty exporters", Config{}, false},
		{"sampling below zero", Config{TraceSamplingRate: -0.1}, true},
		{"sampling above one", Config{TraceSamplingRate: 1.5}, true},
		{"unknown metrics exporter", Config{MetricsExporter: "statsd"}, true},
		{"unknown tracing exporter", Config{TracingExporter: "jaeger"}, true},
		{"otlp tracing without endpoint", Config{TracingExporter: ExporterOTLP}, true},
		{"otlp metrics without endpoint", Config{MetricsExporter: ExporterOTLP}, true},
		{"otlp with endpoint", Config{MetricsExporter: ExporterOTLP, TracingExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
