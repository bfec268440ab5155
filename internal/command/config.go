package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/discal/internal/authz"
	"github.com/teemow/discal/internal/settings"
)

const configUsage = "Usage: `!discal role <role|everyone>` or `!discal channel <channel|all>`"

const deniedReply = "You do not have permission to manage the bot in this server."

// ConfigCommand implements `!discal`.
type ConfigCommand struct {
	gate      Authorizer
	settings  SettingsStore
	directory Directory
}

// NewConfigCommand creates the `!discal` command.
func NewConfigCommand(gate Authorizer, store SettingsStore, directory Directory) *ConfigCommand {
	return &ConfigCommand{gate: gate, settings: store, directory: directory}
}

// Name implements Command.
func (c *ConfigCommand) Name() string {
	return "discal"
}

// Handle implements Command.
func (c *ConfigCommand) Handle(ctx context.Context, req Request) (string, error) {
	switch req.Sub() {
	case "":
		return c.info(ctx, req.GuildID)
	case "role":
		return c.setRole(ctx, req)
	case "channel":
		return c.setChannel(ctx, req)
	default:
		return configUsage, ErrUsage
	}
}

func (c *ConfigCommand) info(ctx context.Context, guildID string) (string, error) {
	gs, err := c.settings.GetSettings(ctx, guildID)
	if err != nil {
		return "Could not load this server's settings. Please try again later.", err
	}

	role := "everyone"
	if !gs.OpenToEveryone() {
		role = "<@&" + gs.ControlRole + ">"
	}
	channel := "all"
	if gs.RestrictedChannel != settings.ChannelAll {
		channel = "<#" + gs.RestrictedChannel + ">"
	}
	return fmt.Sprintf("Control role: %s\nChannel: %s\n%s", role, channel, configUsage), nil
}

func (c *ConfigCommand) setRole(ctx context.Context, req Request) (string, error) {
	ref := req.Rest()
	if ref == "" {
		return configUsage, ErrUsage
	}
	if reply, err := authorize(ctx, c.gate, req); err != nil {
		return reply, err
	}

	role := settings.ControlRoleEveryone
	display := "everyone"
	if !strings.EqualFold(ref, settings.ControlRoleEveryone) {
		resolved, err := c.directory.ResolveRole(ctx, req.GuildID, ref)
		if errors.Is(err, ErrNotFound) {
			return fmt.Sprintf("Unknown role %q. Use a role mention, id or name, or `everyone`.", ref), err
		}
		if err != nil {
			return "Could not look up roles. Please try again later.", err
		}
		// The @everyone role shares the guild's id and is never listed on members.
		if resolved.ID != req.GuildID {
			role, display = resolved.ID, resolved.Name
		}
	}

	err := c.update(ctx, req.GuildID, func(gs *settings.GuildSettings) {
		gs.ControlRole = role
	})
	if err != nil {
		return "Could not save the control role. Please try again later.", err
	}
	return fmt.Sprintf("Control role set to %s.", display), nil
}

func (c *ConfigCommand) setChannel(ctx context.Context, req Request) (string, error) {
	ref := req.Rest()
	if ref == "" {
		return configUsage, ErrUsage
	}
	if reply, err := authorize(ctx, c.gate, req); err != nil {
		return reply, err
	}

	channel := settings.ChannelAll
	display := "all channels"
	if !strings.EqualFold(ref, settings.ChannelAll) {
		resolved, err := c.directory.ResolveChannel(ctx, req.GuildID, ref)
		if errors.Is(err, ErrNotFound) {
			return fmt.Sprintf("Unknown channel %q. Use a channel mention, id or name, or `all`.", ref), err
		}
		if err != nil {
			return "Could not look up channels. Please try again later.", err
		}
		channel, display = resolved.ID, "#"+resolved.Name
	}

	err := c.update(ctx, req.GuildID, func(gs *settings.GuildSettings) {
		gs.RestrictedChannel = channel
	})
	if err != nil {
		return "Could not save the channel setting. Please try again later.", err
	}
	return fmt.Sprintf("The bot now answers in %s.", display), nil
}

// update reads the whole settings record, applies fn and writes it back.
// Concurrent updates to the same guild may overwrite each other.
func (c *ConfigCommand) update(ctx context.Context, guildID string, fn func(*settings.GuildSettings)) error {
	gs, err := c.settings.GetSettings(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to load guild settings: %w", err)
	}
	gs.GuildID = guildID
	fn(&gs)
	if err := c.settings.PutSettings(ctx, gs); err != nil {
		return fmt.Errorf("failed to save guild settings: %w", err)
	}
	return nil
}

// authorize returns a reply and error when the requester may not mutate state.
func authorize(ctx context.Context, gate Authorizer, req Request) (string, error) {
	err := gate.Authorize(ctx, req.GuildID, req.UserID)
	switch {
	case err == nil:
		return "", nil
	case errors.Is(err, authz.ErrUnauthorized):
		return deniedReply, err
	default:
		return "Could not check your permissions. Please try again later.", err
	}
}
