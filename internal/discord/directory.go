package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/teemow/discal/internal/command"
)

// Directory implements command.Directory.
type Directory struct {
	api guildAPI
}

// NewDirectory creates a Directory reading from session.
func NewDirectory(session *discordgo.Session) *Directory {
	return &Directory{api: sessionAPI{s: session}}
}

// ResolveRole accepts a role mention, id or case-insensitive name.
func (d *Directory) ResolveRole(ctx context.Context, guildID, ref string) (command.Ref, error) {
	roles, err := d.api.Roles(ctx, guildID)
	if err != nil {
		return command.Ref{}, fmt.Errorf("failed to list roles: %w", err)
	}
	refs := make([]command.Ref, 0, len(roles))
	for _, r := range roles {
		if r != nil {
			refs = append(refs, command.Ref{ID: r.ID, Name: r.Name})
		}
	}
	return resolve(refs, unwrapMention(ref, "<@&"))
}

// ResolveChannel accepts a channel mention, id or case-insensitive name of a
// text channel.
func (d *Directory) ResolveChannel(ctx context.Context, guildID, ref string) (command.Ref, error) {
	channels, err := d.api.Channels(ctx, guildID)
	if err != nil {
		return command.Ref{}, fmt.Errorf("failed to list channels: %w", err)
	}
	refs := make([]command.Ref, 0, len(channels))
	for _, c := range channels {
		if c != nil && c.Type == discordgo.ChannelTypeGuildText {
			refs = append(refs, command.Ref{ID: c.ID, Name: c.Name})
		}
	}
	return resolve(refs, strings.TrimPrefix(unwrapMention(ref, "<#"), "#"))
}

func unwrapMention(ref, open string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, open) && strings.HasSuffix(ref, ">") {
		return ref[len(open) : len(ref)-1]
	}
	return ref
}

// resolve matches by id first, then by name.
func resolve(refs []command.Ref, ref string) (command.Ref, error) {
	for _, r := range refs {
		if r.ID == ref {
			return r, nil
		}
	}
	for _, r := range refs {
		if strings.EqualFold(r.Name, ref) {
			return r, nil
		}
	}
	return command.Ref{}, command.ErrNotFound
}
