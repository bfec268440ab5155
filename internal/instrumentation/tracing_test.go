package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestStartGoogleAPISpan(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartGoogleAPISpan(context.Background(), ServiceCalendar, OperationCreateCalendar)
	if GetTraceID(ctx) == "" || GetSpanID(ctx) == "" {
		t.Error("expected trace and span ids in context")
	}
	SetSpanError(span, errors.New("quota exceeded"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "google.calendar.calendars.insert" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want error", ended[0].Status().Code)
	}
}

func TestStartCommandSpan(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartCommandSpan(context.Background(), "calendar.confirm", "G1")
	SetSpanSuccess(span)
	span.End()

	_, span = StartCommandSpan(context.Background(), "no-such-command", "G1")
	span.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}
	if ended[0].Name() != "command.calendar.confirm" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	if ended[1].Name() != "command.unknown" {
		t.Errorf("span name = %q", ended[1].Name())
	}
}

func TestSpanIDsWithoutSpan(t *testing.T) {
	if GetTraceID(context.Background()) != "" {
		t.Error("expected empty trace id")
	}
	if GetSpanID(context.Background()) != "" {
		t.Error("expected empty span id")
	}
}
