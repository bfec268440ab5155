package google

import (
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// DefaultOAuthScopes are the scopes requested by "discal auth":
//   - Calendar: create guild calendars and manage their ACLs
//   - Gmail send: deliver failure alerts
var DefaultOAuthScopes = []string{
	calendar.CalendarScope,
	gmail.GmailSendScope,
}
