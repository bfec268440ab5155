package settings

import (
	"errors"
	"strings"
)

// Sentinel values stored in GuildSettings.
const (
	// ControlRoleEveryone means no specific role is required to manage the bot.
	ControlRoleEveryone = "everyone"

	// ChannelAll means the bot answers in every channel.
	ChannelAll = "all"
)

// ErrNotFound is returned by record lookups when a guild has no calendar record.
var ErrNotFound = errors.New("record not found")

// GuildSettings is the per-guild bot configuration.
type GuildSettings struct {
	GuildID           string
	ControlRole       string
	RestrictedChannel string
}

// DefaultSettings returns the settings a guild has before anyone configured it.
func DefaultSettings(guildID string) GuildSettings {
	return GuildSettings{
		GuildID:           guildID,
		ControlRole:       ControlRoleEveryone,
		RestrictedChannel: ChannelAll,
	}
}

// Normalize fills empty fields with their defaults.
func (s GuildSettings) Normalize() GuildSettings {
	if strings.TrimSpace(s.ControlRole) == "" {
		s.ControlRole = ControlRoleEveryone
	}
	if strings.TrimSpace(s.RestrictedChannel) == "" {
		s.RestrictedChannel = ChannelAll
	}
	return s
}

// OpenToEveryone reports whether any member may manage the bot.
func (s GuildSettings) OpenToEveryone() bool {
	return s.ControlRole == "" || strings.EqualFold(s.ControlRole, ControlRoleEveryone)
}

// AllowsChannel reports whether the bot should answer in the given channel.
func (s GuildSettings) AllowsChannel(channelID string) bool {
	if s.RestrictedChannel == "" || strings.EqualFold(s.RestrictedChannel, ChannelAll) {
		return true
	}
	return s.RestrictedChannel == channelID
}

// RecordState tracks whether a guild's calendar exists.
type RecordState int

const (
	StateNone RecordState = iota
	StatePending
	StateActive
)

func (s RecordState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	default:
		return "none"
	}
}

// DefaultCalendarNumber is the slot every guild calendar occupies. Guilds own a
// single calendar.
const DefaultCalendarNumber = 1

// ResourceRecord maps a guild to the Google calendar it owns.
type ResourceRecord struct {
	GuildID         string
	CalendarNumber  int
	CalendarID      string
	CalendarAddress string
	State           RecordState
}
