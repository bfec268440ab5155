// Package instrumentation provides OpenTelemetry metrics, tracing and the
// command audit log for the discal bot.
//
// # Metrics
//
//   - discal_commands_total, discal_command_duration_seconds: chat commands by command and status
//   - discal_confirm_total: calendar confirm attempts by result
//   - discal_active_drafts: guilds with an unconfirmed draft
//   - discal_alerts_total: failure alerts by severity and delivery result
//   - google_api_operations_total, google_api_operation_duration_seconds: Google API calls
//   - http_requests_total, http_request_duration_seconds: health server requests
//
// # Tracing
//
// Spans are created per command (command.<name>), per confirm (confirm) and
// per Google API call (google.<service>.<operation>).
//
// # Configuration
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE,
// OTEL_TRACES_SAMPLER_ARG, OTEL_SERVICE_NAME, METRICS_DETAILED_LABELS,
// AUDIT_LOGGING_ENABLED and AUDIT_LOGGING_INCLUDE_PII.
package instrumentation
