// Package server holds the process-level plumbing around the bot: the
// ServerContext that owns shutdown, the health endpoints used by
// orchestrator probes and the Prometheus metrics server.
//
// # Key Components
//
// ServerContext carries the lifetime context and runs registered shutdown
// hooks in reverse order, so the Discord session closes before the alert
// queue drains and the store closes last.
//
// HealthChecker serves /healthz (liveness), /readyz (readiness, including
// the Discord gateway connection) and /healthz/detailed. HealthServer
// serves them on their own port with request metrics.
//
// MetricsServer exposes /metrics from the default Prometheus registry
// that the OpenTelemetry exporter writes to.
package server
