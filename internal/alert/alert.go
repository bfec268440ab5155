package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity ranks an alert.
type Severity string

const (
	// SeverityError is a failed operation that left no inconsistent state.
	SeverityError Severity = "error"

	// SeverityCritical means external state may be orphaned or inconsistent.
	SeverityCritical Severity = "critical"
)

// Alert describes one failure.
type Alert struct {
	ID        string
	Time      time.Time
	Severity  Severity
	Component string
	GuildID   string
	Summary   string
	Err       error
}

// New creates an alert with a fresh id and the current time.
func New(severity Severity, component, guildID, summary string, err error) Alert {
	return Alert{
		ID:        uuid.NewString(),
		Time:      time.Now().UTC(),
		Severity:  severity,
		Component: component,
		GuildID:   guildID,
		Summary:   summary,
		Err:       err,
	}
}

// Subject is a one-line summary suitable for an email subject.
func (a Alert) Subject() string {
	return fmt.Sprintf("[discal %s] %s: %s", a.Severity, a.Component, a.Summary)
}

// Body renders the alert as plain text.
func (a Alert) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Alert:     %s\n", a.ID)
	fmt.Fprintf(&b, "Time:      %s\n", a.Time.Format(time.RFC3339))
	fmt.Fprintf(&b, "Severity:  %s\n", a.Severity)
	fmt.Fprintf(&b, "Component: %s\n", a.Component)
	if a.GuildID != "" {
		fmt.Fprintf(&b, "Guild:     %s\n", a.GuildID)
	}
	fmt.Fprintf(&b, "\n%s\n", a.Summary)
	if a.Err != nil {
		fmt.Fprintf(&b, "\nError:\n%v\n", a.Err)
	}
	return b.String()
}

// Reporter accepts alerts without blocking.
type Reporter interface {
	Report(ctx context.Context, a Alert)
}

// Sender delivers a single alert.
type Sender interface {
	Send(ctx context.Context, a Alert) error
}
