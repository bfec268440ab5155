package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/discal/internal/google"
	"github.com/teemow/discal/internal/instrumentation"
)

// DefaultTimeout bounds each send when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Client wraps the Gmail Users service.
type Client struct {
	svc     *gmail.UsersService
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

// WithMetrics records every send on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// EmailMessage is a message to send.
type EmailMessage struct {
	To      []string
	Cc      []string
	Subject string
	Body    string
	IsHTML  bool
}

// NewClientForAccount creates a Gmail client authenticated as account.
func NewClientForAccount(ctx context.Context, account string, creds google.Credentials, provider google.TokenProvider, opts ...Option) (*Client, error) {
	httpClient, err := google.HTTPClientForAccount(ctx, creds, provider, account)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	c := NewClientWithService(svc, opts...)
	c.account = account
	return c, nil
}

// NewClientWithService wraps an existing service, e.g. one pointed at a test server.
func NewClientWithService(svc *gmail.Service, opts ...Option) *Client {
	c := &Client{
		account: google.DefaultAccount,
		timeout: DefaultTimeout,
	}
	if svc != nil {
		c.svc = svc.Users
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

// encodeRFC2047 encodes non-ASCII header values.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// buildRawMessage renders msg in RFC 2822 format.
func buildRawMessage(msg *EmailMessage) string {
	var b strings.Builder

	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	if len(msg.Cc) > 0 {
		b.WriteString("Cc: " + strings.Join(msg.Cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + encodeRFC2047(msg.Subject) + "\r\n")
	if msg.IsHTML {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return b.String()
}

// SendEmail sends msg as the authenticated user and returns the message id.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, instrumentation.OperationSend)
	defer span.End()

	start := time.Now()
	sent, err := c.svc.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(buildRawMessage(msg))),
	}).Context(ctx).Do()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, instrumentation.OperationSend, instrumentation.StatusError, time.Since(start))
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	instrumentation.SetSpanSuccess(span)
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, instrumentation.OperationSend, instrumentation.StatusSuccess, time.Since(start))
	return sent.Id, nil
}
