// Package cmd implements the command-line interface for discal.
//
// This package provides the following commands:
//   - serve: Connect to Discord and run the bot
//   - auth: Authorize the bot's Google account
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
