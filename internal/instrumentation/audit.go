package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/discal/internal/logging"
)

// CommandInvocation is the audit record of one chat command.
//
// UserID is a raw Discord user id. It is hashed before logging unless the
// AuditLogger was configured with IncludePII.
type CommandInvocation struct {
	Command string
	GuildID string
	UserID  string

	StartTime time.Time
	Duration  time.Duration
	Status    string
	Error     string

	TraceID string
	SpanID  string
}

// NewCommandInvocation starts timing a command.
func NewCommandInvocation(command, guildID, userID string) *CommandInvocation {
	return &CommandInvocation{
		Command:   command,
		GuildID:   guildID,
		UserID:    userID,
		StartTime: time.Now(),
	}
}

// WithSpanContext copies the trace and span ids from ctx.
func (ci *CommandInvocation) WithSpanContext(ctx context.Context) *CommandInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ci.TraceID = sc.TraceID().String()
		ci.SpanID = sc.SpanID().String()
	}
	return ci
}

// Complete stops the timer and records the outcome. status is one of
// StatusSuccess, StatusError or StatusDenied.
func (ci *CommandInvocation) Complete(status string, err error) *CommandInvocation {
	ci.Duration = time.Since(ci.StartTime)
	ci.Status = status
	if err != nil {
		ci.Error = err.Error()
	}
	return ci
}

// Succeeded reports whether the command completed with StatusSuccess.
func (ci *CommandInvocation) Succeeded() bool {
	return ci.Status == StatusSuccess
}

func (ci *CommandInvocation) logAttrs(includePII bool) []any {
	user := logging.AnonymizeUser(ci.UserID)
	if includePII {
		user = ci.UserID
	}

	attrs := []any{
		slog.String("command", ci.Command),
		slog.String("guild_id", ci.GuildID),
		slog.String("user", user),
		slog.Duration("duration", ci.Duration),
		slog.String("status", ci.Status),
	}
	if ci.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ci.TraceID), slog.String("span_id", ci.SpanID))
	}
	if ci.Error != "" {
		attrs = append(attrs, slog.String("error", ci.Error))
	}
	return attrs
}

// AuditLogger writes one line per handled command.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an enabled AuditLogger that hashes user ids.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates an AuditLogger from config. A nil logger
// means slog.Default().
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogCommand logs ci as command_executed, command_denied or command_failed.
func (al *AuditLogger) LogCommand(ci *CommandInvocation) {
	if al == nil || !al.enabled {
		return
	}

	args := ci.logAttrs(al.includePII)
	switch ci.Status {
	case StatusSuccess:
		al.logger.Info("command_executed", args...)
	case StatusDenied:
		al.logger.Info("command_denied", args...)
	default:
		al.logger.Warn("command_failed", args...)
	}
}
