package instrumentation

import "strings"

// Google API operation names used as metric labels and span names.
const (
	OperationCreateCalendar = "calendars.insert"
	OperationDeleteCalendar = "calendars.delete"
	OperationInsertACL      = "acl.insert"
	OperationSend           = "messages.send"
)

// knownCommands bounds the "command" label. Anything else is recorded as "unknown".
var knownCommands = map[string]struct{}{
	"discal":               {},
	"discal.role":          {},
	"discal.channel":       {},
	"calendar":             {},
	"calendar.create":      {},
	"calendar.name":        {},
	"calendar.description": {},
	"calendar.timezone":    {},
	"calendar.review":      {},
	"calendar.confirm":     {},
	"calendar.cancel":      {},
}

// CommandLabel normalizes a command name for use as a metric label. User input
// never reaches the label set directly.
//
//	CommandLabel("Calendar.Confirm")  // "calendar.confirm"
//	CommandLabel("calendar.dance")    // "unknown"
func CommandLabel(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := knownCommands[name]; ok {
		return name
	}
	return "unknown"
}
