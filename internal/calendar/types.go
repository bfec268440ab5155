package calendar

import (
	"net/url"

	calendar "google.golang.org/api/calendar/v3"
)

// ACL values used for guild calendars.
const (
	ScopeTypeDefault = "default"
	RoleReader       = "reader"
)

// CalendarInput holds the attributes of a calendar to create.
type CalendarInput struct {
	Summary     string
	Description string
	TimeZone    string // IANA name, empty for the account default
}

// CalendarInfo describes a calendar returned by the API.
type CalendarInfo struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
}

// PublicURL returns the embeddable link for a publicly readable calendar.
func PublicURL(calendarID string) string {
	return "https://calendar.google.com/calendar/embed?src=" + url.QueryEscape(calendarID)
}

func toCalendarInfo(cal *calendar.Calendar) CalendarInfo {
	if cal == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:          cal.Id,
		Summary:     cal.Summary,
		Description: cal.Description,
		TimeZone:    cal.TimeZone,
	}
}
