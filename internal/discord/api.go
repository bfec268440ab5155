package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// guildAPI is the part of the Discord API the adapters read.
type guildAPI interface {
	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
	Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	Roles(ctx context.Context, guildID string) ([]*discordgo.Role, error)
	Channels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
}

// sessionAPI serves guildAPI from the session state, falling back to REST.
type sessionAPI struct {
	s *discordgo.Session
}

func (a sessionAPI) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if a.s.State != nil {
		if g, err := a.s.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	return a.s.Guild(guildID, discordgo.WithContext(ctx))
}

func (a sessionAPI) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if a.s.State != nil {
		if m, err := a.s.State.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	return a.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

func (a sessionAPI) Roles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	if a.s.State != nil {
		if g, err := a.s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
			return g.Roles, nil
		}
	}
	return a.s.GuildRoles(guildID, discordgo.WithContext(ctx))
}

func (a sessionAPI) Channels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	if a.s.State != nil {
		if g, err := a.s.State.Guild(guildID); err == nil && len(g.Channels) > 0 {
			return g.Channels, nil
		}
	}
	return a.s.GuildChannels(guildID, discordgo.WithContext(ctx))
}
