package instrumentation

import (
	"fmt"
	"os"
	"slices"
	"strconv"
)

// Config holds the OpenTelemetry settings for the bot.
type Config struct {
	// ServiceName defaults to "discal".
	ServiceName    string
	ServiceVersion string

	// ServiceInstanceID defaults to the hostname.
	ServiceInstanceID string

	// Enabled toggles metrics and tracing (INSTRUMENTATION_ENABLED).
	Enabled bool

	// MetricsExporter is one of "prometheus", "otlp", "stdout".
	MetricsExporter string

	// TracingExporter is one of "otlp", "stdout", "none".
	TracingExporter string

	// OTLPEndpoint is host:port without scheme, e.g. "localhost:4318".
	OTLPEndpoint string

	// OTLPInsecure disables TLS for OTLP export. Development only.
	OTLPInsecure bool

	// TraceSamplingRate is the parent-based ratio, 0.0 to 1.0.
	TraceSamplingRate float64

	// DetailedLabels adds the guild id to command metrics. Keep it off for
	// bots in many guilds.
	DetailedLabels bool

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the per-command audit log.
type AuditLoggingConfig struct {
	Enabled bool

	// IncludePII logs raw Discord user ids instead of hashes.
	IncludePII bool
}

// DefaultConfig reads the instrumentation settings from the environment.
func DefaultConfig() Config {
	return Config{
		ServiceName:       getEnvOrDefault("OTEL_SERVICE_NAME", "discal"),
		ServiceVersion:    "unknown",
		ServiceInstanceID: getEnvOrDefault("OTEL_SERVICE_INSTANCE_ID", ""),
		Enabled:           getEnvBoolOrDefault("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:   getEnvOrDefault("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:   getEnvOrDefault("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:      getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: getEnvFloatOrDefault("OTEL_TRACES_SAMPLER_ARG", 0.1),
		DetailedLabels:    getEnvBoolOrDefault("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    getEnvBoolOrDefault("AUDIT_LOGGING_ENABLED", true),
			IncludePII: getEnvBoolOrDefault("AUDIT_LOGGING_INCLUDE_PII", false),
		},
	}
}

// Validate checks exporter names, the sampling rate and the OTLP endpoint.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	if c.MetricsExporter != "" && !slices.Contains([]string{ExporterPrometheus, ExporterOTLP, ExporterStdout}, c.MetricsExporter) {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}
	if c.TracingExporter != "" && !slices.Contains([]string{ExporterOTLP, ExporterStdout, ExporterNone}, c.TracingExporter) {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if (c.TracingExporter == ExporterOTLP || c.MetricsExporter == ExporterOTLP) && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using an OTLP exporter")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// Label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusDenied  = "denied"

	// Confirm results.
	ConfirmCreated    = "created"
	ConfirmResumed    = "resumed"
	ConfirmInvalid    = "invalid"
	ConfirmNoDraft    = "no_draft"
	ConfirmInProgress = "in_progress"
	ConfirmFailed     = "failed"

	ServiceGmail    = "gmail"
	ServiceCalendar = "calendar"

	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)
