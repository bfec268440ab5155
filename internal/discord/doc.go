// Package discord connects the command router to a Discord gateway session.
//
// NewSession builds the session and Bot forwards guild messages to the
// router and posts the replies. MemberSource answers the authorization
// gate's member lookups and Directory resolves role and channel references
// for `!discal role|channel`. Both read the session's state cache first and
// fall back to the REST API.
package discord
