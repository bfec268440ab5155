package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrCommand   = "command"
	attrGuild     = "guild_id"
	attrSeverity  = "severity"
)

// Metrics records the bot's metrics. The zero value is a no-op recorder, which
// is what a disabled Provider hands out.
type Metrics struct {
	meter metric.Meter

	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	commandsTotal   metric.Int64Counter
	commandDuration metric.Float64Histogram
	confirmTotal    metric.Int64Counter
	alertsTotal     metric.Int64Counter

	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	draftsOnce sync.Once

	detailedLabels bool
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		meter:          meter,
		detailedLabels: detailedLabels,
	}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.commandsTotal, err = meter.Int64Counter(
		"discal_commands_total",
		metric.WithDescription("Total number of chat commands handled"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discal_commands_total counter: %w", err)
	}

	m.commandDuration, err = meter.Float64Histogram(
		"discal_command_duration_seconds",
		metric.WithDescription("Chat command handling duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discal_command_duration_seconds histogram: %w", err)
	}

	m.confirmTotal, err = meter.Int64Counter(
		"discal_confirm_total",
		metric.WithDescription("Total number of calendar confirm attempts by result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discal_confirm_total counter: %w", err)
	}

	m.alertsTotal, err = meter.Int64Counter(
		"discal_alerts_total",
		metric.WithDescription("Total number of failure alerts by severity and delivery result"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discal_alerts_total counter: %w", err)
	}

	m.googleAPIOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.googleAPIOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records a request served by the health server.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCommand records one handled chat command. The command name is passed
// through CommandLabel; guildID is only attached with detailed labels.
func (m *Metrics) RecordCommand(ctx context.Context, command, status, guildID string, duration time.Duration) {
	if m == nil || m.commandsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrCommand, CommandLabel(command)),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && guildID != "" {
		attrs = append(attrs, attribute.String(attrGuild, guildID))
	}

	m.commandsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.commandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordConfirm records the result of a calendar confirm attempt, one of the
// Confirm* constants.
func (m *Metrics) RecordConfirm(ctx context.Context, result string) {
	if m == nil || m.confirmTotal == nil {
		return
	}
	m.confirmTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordAlert records a failure alert. result is "sent", "failed" or "dropped".
func (m *Metrics) RecordAlert(ctx context.Context, severity, result string) {
	if m == nil || m.alertsTotal == nil {
		return
	}
	m.alertsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrSeverity, severity),
		attribute.String(attrResult, result),
	))
}

// RecordGoogleAPIOperation records a Google API call.
//
// Parameters:
//   - service: ServiceCalendar or ServiceGmail
//   - operation: one of the Operation* constants
//   - status: StatusSuccess or StatusError
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// ObserveActiveDrafts registers the discal_active_drafts gauge, read from
// count at collection time. Only the first call registers.
func (m *Metrics) ObserveActiveDrafts(count func() int) error {
	if m == nil || m.meter == nil {
		return nil
	}

	var err error
	m.draftsOnce.Do(func() {
		_, err = m.meter.Int64ObservableGauge(
			"discal_active_drafts",
			metric.WithDescription("Number of guilds with an unconfirmed calendar draft"),
			metric.WithUnit("{draft}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(count()))
				return nil
			}),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to create discal_active_drafts gauge: %w", err)
	}
	return nil
}
