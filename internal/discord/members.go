package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/teemow/discal/internal/authz"
)

const elevatedPermissions = discordgo.PermissionAdministrator | discordgo.PermissionManageServer

// MemberSource implements authz.MemberSource.
type MemberSource struct {
	api guildAPI
}

// NewMemberSource creates a MemberSource reading from session.
func NewMemberSource(session *discordgo.Session) *MemberSource {
	return &MemberSource{api: sessionAPI{s: session}}
}

// Member returns the user's roles and whether they own the guild or hold a
// role with Administrator or Manage Server.
func (m *MemberSource) Member(ctx context.Context, guildID, userID string) (authz.Member, error) {
	member, err := m.api.Member(ctx, guildID, userID)
	if err != nil {
		return authz.Member{}, fmt.Errorf("failed to get guild member: %w", err)
	}
	guild, err := m.api.Guild(ctx, guildID)
	if err != nil {
		return authz.Member{}, fmt.Errorf("failed to get guild: %w", err)
	}
	roles, err := m.api.Roles(ctx, guildID)
	if err != nil {
		return authz.Member{}, fmt.Errorf("failed to get guild roles: %w", err)
	}
	return toMember(guildID, userID, guild.OwnerID, member.Roles, roles), nil
}

// toMember counts the @everyone role, whose id is the guild id, as held when
// checking permissions. Discord leaves it out of member.Roles.
func toMember(guildID, userID, ownerID string, memberRoles []string, guildRoles []*discordgo.Role) authz.Member {
	out := authz.Member{
		UserID:   userID,
		RoleIDs:  append([]string(nil), memberRoles...),
		Elevated: userID == ownerID,
	}
	if out.Elevated {
		return out
	}

	held := make(map[string]bool, len(memberRoles)+1)
	held[guildID] = true
	for _, id := range memberRoles {
		held[id] = true
	}
	for _, r := range guildRoles {
		if r != nil && held[r.ID] && r.Permissions&elevatedPermissions != 0 {
			out.Elevated = true
			break
		}
	}
	return out
}
