package creator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/teemow/discal/internal/alert"
	"github.com/teemow/discal/internal/calendar"
	"github.com/teemow/discal/internal/draft"
	"github.com/teemow/discal/internal/instrumentation"
	"github.com/teemow/discal/internal/logging"
	"github.com/teemow/discal/internal/settings"
)

const component = "creator"

// Google API operation names used in ExternalCallError.Op.
const (
	OpCreateCalendar = "create calendar"
	OpInsertACL      = "set calendar access"
)

// CalendarService is the part of the Google Calendar API the coordinator needs.
type CalendarService interface {
	CreateCalendar(ctx context.Context, input calendar.CalendarInput) (*calendar.CalendarInfo, error)
	InsertACL(ctx context.Context, calendarID, scopeType, role string) error
	DeleteCalendar(ctx context.Context, calendarID string) error
}

// RecordStore persists the guild to calendar mapping.
type RecordStore interface {
	PutResourceRecord(ctx context.Context, rec settings.ResourceRecord) error
}

// Outcome is the result of a confirm. Resource is set iff Success.
type Outcome struct {
	Success  bool
	Resource *draft.Resource

	// Resumed is true when a calendar from an earlier attempt was recorded
	// instead of creating a new one.
	Resumed bool

	// Err classifies the failure: draft.ErrNoDraft, draft.ErrConfirmInProgress,
	// *draft.ValidationError, *ExternalCallError or *PersistenceError.
	Err error
}

func failed(err error) Outcome {
	return Outcome{Err: err}
}

// Coordinator performs the confirm transition.
type Coordinator struct {
	registry  *draft.Registry
	calendars CalendarService
	records   RecordStore
	alerts    alert.Reporter
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records confirm results on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// New creates a Coordinator.
func New(registry *draft.Registry, calendars CalendarService, records RecordStore, alerts alert.Reporter, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:  registry,
		calendars: calendars,
		records:   records,
		alerts:    alerts,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithComponent(c.logger, component)
	return c
}

// Confirm materializes the guild's draft. Concurrent calls for the same guild
// never create more than one calendar: all but one get draft.ErrConfirmInProgress.
func (c *Coordinator) Confirm(ctx context.Context, guildID string) Outcome {
	attemptID := uuid.NewString()
	ctx, span := instrumentation.StartSpan(ctx, "confirm",
		attribute.String(instrumentation.SpanAttrGuild, guildID),
		attribute.String(instrumentation.SpanAttrAttempt, attemptID),
	)
	defer span.End()

	logger := c.logger.With(logging.Guild(guildID), slog.String("attempt_id", attemptID))

	out, result := c.confirm(ctx, logger, guildID)
	c.metrics.RecordConfirm(ctx, result)

	if out.Success {
		instrumentation.SetSpanSuccess(span)
		logger.Info("calendar confirmed",
			logging.Calendar(out.Resource.ID),
			slog.Bool("resumed", out.Resumed),
		)
	} else {
		instrumentation.SetSpanError(span, out.Err)
		logger.Info("calendar confirm failed", slog.String("result", result), logging.Err(out.Err))
	}
	return out
}

func (c *Coordinator) confirm(ctx context.Context, logger *slog.Logger, guildID string) (Outcome, string) {
	d, release, err := c.registry.Claim(guildID)
	switch {
	case errors.Is(err, draft.ErrNoDraft):
		return failed(err), instrumentation.ConfirmNoDraft
	case errors.Is(err, draft.ErrConfirmInProgress):
		return failed(err), instrumentation.ConfirmInProgress
	case err != nil:
		return failed(err), instrumentation.ConfirmFailed
	}

	removeDraft := false
	defer func() { release(removeDraft) }()

	if err := d.Validate(); err != nil {
		return failed(err), instrumentation.ConfirmInvalid
	}

	res, resumed := d.Created, true
	if res == nil {
		resumed = false
		res, err = c.materialize(ctx, logger, d)
		if err != nil {
			return failed(err), instrumentation.ConfirmFailed
		}
	}

	rec := settings.ResourceRecord{
		GuildID:         guildID,
		CalendarNumber:  settings.DefaultCalendarNumber,
		CalendarID:      res.ID,
		CalendarAddress: res.Address,
		State:           settings.StateActive,
	}
	if err := c.records.PutResourceRecord(ctx, rec); err != nil {
		c.registry.Remember(guildID, *res)
		perr := &PersistenceError{CalendarID: res.ID, Err: err}
		c.alerts.Report(ctx, alert.New(alert.SeverityCritical, component, guildID,
			fmt.Sprintf("calendar %s was created but the guild mapping could not be saved", res.ID), perr))
		return failed(perr), instrumentation.ConfirmFailed
	}

	removeDraft = true
	result := instrumentation.ConfirmCreated
	if resumed {
		result = instrumentation.ConfirmResumed
	}
	return Outcome{Success: true, Resource: res, Resumed: resumed}, result
}

// materialize creates the calendar and opens it for public reading. When the
// ACL cannot be set the calendar is deleted again.
func (c *Coordinator) materialize(ctx context.Context, logger *slog.Logger, d draft.Draft) (*draft.Resource, error) {
	info, err := c.calendars.CreateCalendar(ctx, calendar.CalendarInput{
		Summary:     d.Name,
		Description: d.Description,
		TimeZone:    d.Timezone,
	})
	if err != nil {
		xerr := &ExternalCallError{Op: OpCreateCalendar, Err: err}
		c.alerts.Report(ctx, alert.New(alert.SeverityError, component, d.GuildID, "calendar creation failed", xerr))
		return nil, xerr
	}

	if err := c.calendars.InsertACL(ctx, info.ID, calendar.ScopeTypeDefault, calendar.RoleReader); err != nil {
		xerr := &ExternalCallError{Op: OpInsertACL, Err: err}

		severity := alert.SeverityError
		summary := fmt.Sprintf("could not make calendar %s public; it was deleted", info.ID)
		// The request context may already be done; the rollback gets its own deadline.
		if derr := c.calendars.DeleteCalendar(context.WithoutCancel(ctx), info.ID); derr != nil {
			severity = alert.SeverityCritical
			summary = fmt.Sprintf("could not make calendar %s public and could not delete it", info.ID)
			logger.Error("calendar rollback failed", logging.Calendar(info.ID), logging.Err(derr))
			xerr.Err = errors.Join(err, fmt.Errorf("rollback: %w", derr))
		}
		c.alerts.Report(ctx, alert.New(severity, component, d.GuildID, summary, xerr))
		return nil, xerr
	}

	return &draft.Resource{ID: info.ID, Address: info.ID}, nil
}
