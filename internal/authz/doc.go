// Package authz decides whether a guild member may change the bot's
// configuration or the guild's calendar draft.
//
// A guild's GuildSettings.ControlRole names the role that may manage the bot.
// The sentinel "everyone" opens management to every member. Members with an
// elevated capability (Administrator or Manage Server permission, or guild
// ownership) are always authorized.
package authz
