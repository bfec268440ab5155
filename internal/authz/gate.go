package authz

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/teemow/discal/internal/settings"
)

// ErrUnauthorized is returned when a member may not perform a mutating command.
var ErrUnauthorized = errors.New("not authorized to manage this guild")

// Member is the acting member as seen by the gate.
type Member struct {
	UserID  string
	RoleIDs []string

	// Elevated is true for guild owners and members holding the Administrator
	// or Manage Server permission.
	Elevated bool
}

// HasRole reports whether the member holds roleID.
func (m Member) HasRole(roleID string) bool {
	return slices.Contains(m.RoleIDs, roleID)
}

// MemberSource resolves a user's roles and elevation within a guild.
type MemberSource interface {
	Member(ctx context.Context, guildID, userID string) (Member, error)
}

// SettingsSource is the subset of settings.Store the gate reads.
type SettingsSource interface {
	GetSettings(ctx context.Context, guildID string) (settings.GuildSettings, error)
}

// Gate authorizes mutating commands.
type Gate struct {
	settings SettingsSource
	members  MemberSource
}

// NewGate creates a Gate backed by the given settings and member sources.
func NewGate(settings SettingsSource, members MemberSource) *Gate {
	return &Gate{settings: settings, members: members}
}

// IsAuthorized reports whether member may manage a guild configured with gs.
func IsAuthorized(gs settings.GuildSettings, member Member) bool {
	if gs.OpenToEveryone() {
		return true
	}
	return member.Elevated || member.HasRole(gs.ControlRole)
}

// Authorize loads the guild's settings and the member and returns
// ErrUnauthorized if the member may not manage the guild.
func (g *Gate) Authorize(ctx context.Context, guildID, userID string) error {
	gs, err := g.settings.GetSettings(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load guild settings: %w", err)
	}
	if gs.OpenToEveryone() {
		return nil
	}

	member, err := g.members.Member(ctx, guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve member: %w", err)
	}
	if !IsAuthorized(gs, member) {
		return ErrUnauthorized
	}
	return nil
}
