package alert

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/discal/internal/instrumentation"
	"github.com/teemow/discal/internal/logging"
)

// DefaultQueueSize is the buffer size used when none is configured.
const DefaultQueueSize = 64

// deliveryTimeout bounds a single Send; the worker outlives the request that
// raised the alert, so it uses its own context.
const deliveryTimeout = 30 * time.Second

// AsyncReporter queues alerts and delivers them from one worker goroutine.
type AsyncReporter struct {
	sender  Sender
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	queue chan Alert
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// ReporterOption configures an AsyncReporter.
type ReporterOption func(*AsyncReporter)

// WithLogger sets the logger for delivery failures and drops.
func WithLogger(logger *slog.Logger) ReporterOption {
	return func(r *AsyncReporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records sent, failed and dropped alerts on m.
func WithMetrics(m *instrumentation.Metrics) ReporterOption {
	return func(r *AsyncReporter) {
		r.metrics = m
	}
}

// NewAsyncReporter starts the delivery worker. Call Close to stop it.
func NewAsyncReporter(sender Sender, queueSize int, opts ...ReporterOption) *AsyncReporter {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	r := &AsyncReporter{
		sender: sender,
		logger: slog.Default(),
		queue:  make(chan Alert, queueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.WithComponent(r.logger, "alert")

	go r.run()
	return r
}

// Report queues a for delivery. It never blocks; when the queue is full or
// the reporter is closed the alert is logged and dropped.
func (r *AsyncReporter) Report(ctx context.Context, a Alert) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.drop(ctx, a, "reporter closed")
		return
	}

	select {
	case r.queue <- a:
	default:
		r.drop(ctx, a, "queue full")
	}
}

func (r *AsyncReporter) drop(ctx context.Context, a Alert, reason string) {
	r.logger.LogAttrs(ctx, slog.LevelError, "alert dropped",
		slog.String("reason", reason),
		slog.String("alert_id", a.ID),
		slog.String("severity", string(a.Severity)),
		logging.Guild(a.GuildID),
		slog.String("summary", a.Summary),
		logging.Err(a.Err),
	)
	r.metrics.RecordAlert(ctx, string(a.Severity), "dropped")
}

func (r *AsyncReporter) run() {
	defer close(r.done)

	for a := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		err := r.sender.Send(ctx, a)
		cancel()

		if err != nil {
			r.logger.Error("alert delivery failed",
				slog.String("alert_id", a.ID),
				slog.String("severity", string(a.Severity)),
				slog.String("summary", a.Summary),
				logging.Err(err),
			)
			r.metrics.RecordAlert(context.Background(), string(a.Severity), "failed")
			continue
		}
		r.metrics.RecordAlert(context.Background(), string(a.Severity), "sent")
	}
}

// Close stops accepting alerts and waits until queued alerts are delivered or
// ctx is done.
func (r *AsyncReporter) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
