package command

import (
	"context"
	"errors"
	"strings"

	"github.com/teemow/discal/internal/creator"
	"github.com/teemow/discal/internal/settings"
)

var (
	// ErrUsage marks a malformed command. The reply carries the usage text.
	ErrUsage = errors.New("invalid command usage")

	// ErrNotFound is returned by a Directory for unknown roles and channels.
	ErrNotFound = errors.New("not found")
)

// Request is one chat command addressed to a Command.
type Request struct {
	GuildID   string
	ChannelID string
	UserID    string

	// Args are the whitespace-separated words after the command name.
	Args []string
}

// Sub returns the lower-cased first argument, or "".
func (r Request) Sub() string {
	if len(r.Args) == 0 {
		return ""
	}
	return strings.ToLower(r.Args[0])
}

// Rest joins the arguments after the subcommand with single spaces.
func (r Request) Rest() string {
	if len(r.Args) < 2 {
		return ""
	}
	return strings.Join(r.Args[1:], " ")
}

// Command handles one top-level chat command. Handle always returns reply
// text; err classifies the outcome for logging and metrics.
type Command interface {
	Name() string
	Handle(ctx context.Context, req Request) (reply string, err error)
}

// Authorizer is satisfied by *authz.Gate.
type Authorizer interface {
	Authorize(ctx context.Context, guildID, userID string) error
}

// Confirmer is satisfied by *creator.Coordinator.
type Confirmer interface {
	Confirm(ctx context.Context, guildID string) creator.Outcome
}

// SettingsStore is the settings access the commands need.
type SettingsStore interface {
	GetSettings(ctx context.Context, guildID string) (settings.GuildSettings, error)
	PutSettings(ctx context.Context, s settings.GuildSettings) error
}

// RecordReader looks up a guild's calendar record.
type RecordReader interface {
	GetResourceRecord(ctx context.Context, guildID string) (settings.ResourceRecord, error)
}

// Ref is a resolved role or channel.
type Ref struct {
	ID   string
	Name string
}

// Directory resolves role and channel references (mention, id or name)
// within a guild. Unknown references yield ErrNotFound.
type Directory interface {
	ResolveRole(ctx context.Context, guildID, ref string) (Ref, error)
	ResolveChannel(ctx context.Context, guildID, ref string) (Ref, error)
}
