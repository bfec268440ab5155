// Package calendar wraps the Google Calendar API calls the bot makes when a
// guild confirms its calendar: creating the calendar, making it publicly
// readable and deleting it again when setup cannot be completed.
//
// Every call runs under the client's per-call timeout and is recorded as a
// google.calendar.<operation> span and a google_api_operations_total sample.
//
// Example usage:
//
//	client, err := calendar.NewClientForAccount(ctx, "default", creds, provider,
//	    calendar.WithTimeout(15*time.Second))
//	if err != nil {
//	    return err
//	}
//	info, err := client.CreateCalendar(ctx, calendar.CalendarInput{Summary: "Raid Nights"})
package calendar
