package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/teemow/discal/internal/authz"
	"github.com/teemow/discal/internal/instrumentation"
	"github.com/teemow/discal/internal/logging"
)

// DefaultPrefix starts every command.
const DefaultPrefix = "!"

// Message is an incoming chat message.
type Message struct {
	GuildID   string
	ChannelID string
	UserID    string
	Content   string
}

// Router dispatches messages to commands.
type Router struct {
	prefix   string
	commands map[string]Command
	settings SettingsStore
	gate     Authorizer
	audit    *instrumentation.AuditLogger
	metrics  *instrumentation.Metrics
	logger   *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) RouterOption {
	return func(r *Router) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithAudit logs every handled command to audit.
func WithAudit(audit *instrumentation.AuditLogger) RouterOption {
	return func(r *Router) {
		r.audit = audit
	}
}

// WithMetrics records every handled command on m.
func WithMetrics(m *instrumentation.Metrics) RouterOption {
	return func(r *Router) {
		r.metrics = m
	}
}

// WithLogger sets the router's logger.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRouter creates a Router for commands.
func NewRouter(store SettingsStore, gate Authorizer, commands []Command, opts ...RouterOption) *Router {
	r := &Router{
		prefix:   DefaultPrefix,
		commands: make(map[string]Command, len(commands)),
		settings: store,
		gate:     gate,
		logger:   slog.Default(),
	}
	for _, cmd := range commands {
		r.commands[strings.ToLower(cmd.Name())] = cmd
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.WithComponent(r.logger, "router")
	return r
}

// parse splits content into a known command and its arguments.
func (r *Router) parse(content string) (Command, []string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, r.prefix) {
		return nil, nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, r.prefix))
	if len(fields) == 0 {
		return nil, nil, false
	}
	cmd, ok := r.commands[strings.ToLower(fields[0])]
	if !ok {
		return nil, nil, false
	}
	return cmd, fields[1:], true
}

// Route handles msg and returns the reply. ok is false when the message is
// not a command for this bot or arrived in a channel the guild has excluded.
func (r *Router) Route(ctx context.Context, msg Message) (reply string, ok bool) {
	cmd, args, found := r.parse(msg.Content)
	if !found || msg.GuildID == "" {
		return "", false
	}
	if !r.channelAllowed(ctx, cmd, msg) {
		return "", false
	}

	req := Request{GuildID: msg.GuildID, ChannelID: msg.ChannelID, UserID: msg.UserID, Args: args}
	name := cmd.Name()
	if sub := req.Sub(); sub != "" {
		name += "." + sub
	}

	ctx, span := instrumentation.StartCommandSpan(ctx, name, msg.GuildID)
	defer span.End()
	inv := instrumentation.NewCommandInvocation(name, msg.GuildID, msg.UserID).WithSpanContext(ctx)

	reply, err := cmd.Handle(ctx, req)

	status := instrumentation.StatusSuccess
	switch {
	case err == nil:
		instrumentation.SetSpanSuccess(span)
	case errors.Is(err, authz.ErrUnauthorized):
		status = instrumentation.StatusDenied
	default:
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	}
	inv.Complete(status, err)

	r.audit.LogCommand(inv)
	r.metrics.RecordCommand(ctx, name, status, msg.GuildID, inv.Duration)
	return reply, true
}

// channelAllowed applies the guild's restricted channel. Authorized members
// can always reach `!discal` so a misconfigured restriction can be undone.
func (r *Router) channelAllowed(ctx context.Context, cmd Command, msg Message) bool {
	gs, err := r.settings.GetSettings(ctx, msg.GuildID)
	if err != nil {
		r.logger.Warn("failed to load guild settings", logging.Guild(msg.GuildID), logging.Err(err))
		return true
	}
	if gs.AllowsChannel(msg.ChannelID) {
		return true
	}
	if _, isConfig := cmd.(*ConfigCommand); isConfig {
		return r.gate.Authorize(ctx, msg.GuildID, msg.UserID) == nil
	}
	return false
}
