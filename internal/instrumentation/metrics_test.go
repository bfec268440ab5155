package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider.Metrics()
}

func TestMetrics_Record(t *testing.T) {
	ctx := context.Background()
	m := newTestMetrics(t)

	// None of these should panic.
	m.RecordHTTPRequest(ctx, "GET", "/healthz", 200, 10*time.Millisecond)
	m.RecordCommand(ctx, "calendar.confirm", StatusSuccess, "G1", 200*time.Millisecond)
	m.RecordCommand(ctx, "calendar.whatever", StatusError, "G1", time.Millisecond)
	m.RecordConfirm(ctx, ConfirmCreated)
	m.RecordConfirm(ctx, ConfirmInProgress)
	m.RecordAlert(ctx, "critical", "sent")
	m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationCreateCalendar, StatusSuccess, 300*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationSend, StatusError, 100*time.Millisecond)
}

func TestMetrics_ObserveActiveDrafts(t *testing.T) {
	m := newTestMetrics(t)

	if err := m.ObserveActiveDrafts(func() int { return 3 }); err != nil {
		t.Fatalf("ObserveActiveDrafts() error = %v", err)
	}
	// Second registration is ignored.
	if err := m.ObserveActiveDrafts(func() int { return 4 }); err != nil {
		t.Fatalf("second ObserveActiveDrafts() error = %v", err)
	}
}

func TestMetrics_NoopRecorder(t *testing.T) {
	ctx := context.Background()

	for name, m := range map[string]*Metrics{"zero": {}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			m.RecordHTTPRequest(ctx, "GET", "/", 200, time.Second)
			m.RecordCommand(ctx, "calendar", StatusSuccess, "", time.Second)
			m.RecordConfirm(ctx, ConfirmFailed)
			m.RecordAlert(ctx, "error", "dropped")
			m.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationInsertACL, StatusError, time.Second)
			if err := m.ObserveActiveDrafts(func() int { return 0 }); err != nil {
				t.Errorf("ObserveActiveDrafts() error = %v", err)
			}
		})
	}
}
