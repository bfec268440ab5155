package calendar

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/discal/internal/google"
	"github.com/teemow/discal/internal/instrumentation"
)

// DefaultTimeout bounds each API call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Client wraps the Google Calendar service.
type Client struct {
	svc     *calendar.Service
	account string
	timeout time.Duration
	metrics *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics records every call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClientForAccount creates a Calendar client authenticated as account.
func NewClientForAccount(ctx context.Context, account string, creds google.Credentials, provider google.TokenProvider, opts ...Option) (*Client, error) {
	httpClient, err := google.HTTPClientForAccount(ctx, creds, provider, account)
	if err != nil {
		return nil, err
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	c := NewClientWithService(svc, opts...)
	c.account = account
	return c, nil
}

// NewClientWithService wraps an existing service, e.g. one pointed at a test server.
func NewClientWithService(svc *calendar.Service, opts ...Option) *Client {
	c := &Client{
		svc:     svc,
		account: google.DefaultAccount,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// CreateCalendar creates a secondary calendar owned by the bot account.
func (c *Client) CreateCalendar(ctx context.Context, input CalendarInput) (*CalendarInfo, error) {
	var created *calendar.Calendar
	err := c.do(ctx, instrumentation.OperationCreateCalendar, "", func(ctx context.Context) error {
		var err error
		created, err = c.svc.Calendars.Insert(&calendar.Calendar{
			Summary:     input.Summary,
			Description: input.Description,
			TimeZone:    input.TimeZone,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar: %w", err)
	}

	info := toCalendarInfo(created)
	return &info, nil
}

// InsertACL adds an access rule to a calendar.
func (c *Client) InsertACL(ctx context.Context, calendarID, scopeType, role string) error {
	err := c.do(ctx, instrumentation.OperationInsertACL, calendarID, func(ctx context.Context) error {
		_, err := c.svc.Acl.Insert(calendarID, &calendar.AclRule{
			Scope: &calendar.AclRuleScope{Type: scopeType},
			Role:  role,
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert calendar ACL: %w", err)
	}
	return nil
}

// DeleteCalendar deletes a secondary calendar.
func (c *Client) DeleteCalendar(ctx context.Context, calendarID string) error {
	err := c.do(ctx, instrumentation.OperationDeleteCalendar, calendarID, func(ctx context.Context) error {
		return c.svc.Calendars.Delete(calendarID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete calendar: %w", err)
	}
	return nil
}

// do runs fn under the per-call timeout inside a span and records the outcome.
func (c *Client) do(ctx context.Context, operation, calendarID string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation)
	defer span.End()
	if calendarID != "" {
		span.SetAttributes(attribute.String(instrumentation.SpanAttrCalendarID, calendarID))
	}

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, time.Since(start))
	return err
}
