// Package logging provides structured logging utilities for the discal bot.
//
// All packages log through log/slog. This package keeps attribute names consistent
// (guild_id, operation, component, status, error) and hides Discord user ids behind
// a stable hash.
//
// # Usage Patterns
//
//	logger := logging.WithGuild(slog.Default(), guildID)
//	logger.Info("draft started",
//	    logging.Operation("calendar.create"),
//	    logging.UserHash(authorID))
//
// # Security Considerations
//
//   - Discord user ids are hashed before they are logged
//   - Bot and OAuth tokens are never logged; use SanitizeToken when a token must be referenced
package logging
