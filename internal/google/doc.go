// Package google provides OAuth2 credentials for the Google APIs the bot calls.
//
// Tokens are obtained once with "discal auth" and stored per account under the
// user cache directory (~/.cache/discal/google-<account>.token). The
// TokenProvider interface lets the calendar and gmail clients load them
// without knowing where they live.
package google
