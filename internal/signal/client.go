package signal

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds one signal-cli invocation.
const DefaultTimeout = 30 * time.Second

// Runner executes signal-cli with args and returns its stderr.
type Runner func(ctx context.Context, args ...string) (stderr string, err error)

// Client sends Signal messages via signal-cli.
type Client struct {
	userID  string // The phone number registered with signal-cli (e.g., "+15551234567")
	timeout time.Duration
	run     Runner
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRunner replaces the signal-cli executor.
func WithRunner(run Runner) Option {
	return func(c *Client) {
		if run != nil {
			c.run = run
		}
	}
}

// NewClient creates a Signal client for the specified phone number.
// The phone number must be already registered with signal-cli.
func NewClient(userID string, opts ...Option) (*Client, error) {
	if err := validatePhone(userID); err != nil {
		return nil, &SignalError{Op: "initialize", UserID: userID, Err: err}
	}

	c := &Client{userID: userID, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.run == nil {
		// Verify signal-cli is installed by checking if the command exists
		if _, err := exec.LookPath("signal-cli"); err != nil {
			return nil, &SignalError{
				Op:     "initialize",
				UserID: userID,
				Err:    fmt.Errorf("signal-cli not found in PATH. Please install signal-cli: https://github.com/AsamK/signal-cli"),
			}
		}
		c.run = execRunner
	}
	return c, nil
}

// UserID returns the phone number associated with this client
func (c *Client) UserID() string {
	return c.userID
}

func execRunner(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "signal-cli", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// Send delivers message to a recipient: a phone number starting with "+"
// or a group id prefixed with "group:".
func (c *Client) Send(ctx context.Context, recipient, message string) error {
	if message == "" {
		return &SignalError{Op: "send", UserID: c.userID, Err: fmt.Errorf("message cannot be empty")}
	}

	args := []string{"-u", c.userID, "send", "-m", message}
	switch {
	case strings.HasPrefix(recipient, "group:"):
		groupID := strings.TrimPrefix(recipient, "group:")
		if groupID == "" {
			return &SignalError{Op: "send", UserID: c.userID, Err: fmt.Errorf("group id cannot be empty")}
		}
		args = append(args, "-g", groupID)
	default:
		if err := validatePhone(recipient); err != nil {
			return &SignalError{Op: "send", UserID: c.userID, Err: fmt.Errorf("recipient: %w", err)}
		}
		args = append(args, recipient)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stderr, err := c.run(ctx, args...)
	if err != nil {
		return &SignalError{
			Op:     "send",
			UserID: c.userID,
			Err:    fmt.Errorf("failed to send message: %w (stderr: %s)", err, strings.TrimSpace(stderr)),
		}
	}
	return nil
}

func validatePhone(number string) error {
	if number == "" {
		return fmt.Errorf("phone number cannot be empty")
	}
	// Validate that the phone number starts with + (required by signal-cli)
	if !strings.HasPrefix(number, "+") {
		return fmt.Errorf("phone number must start with + (e.g., +15551234567)")
	}
	return nil
}
