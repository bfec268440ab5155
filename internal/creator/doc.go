// Package creator turns a guild's calendar draft into a real Google calendar.
//
// Coordinator.Confirm claims the draft, creates the calendar, makes it
// publicly readable, records the guild to calendar mapping and only then
// removes the draft. Expected failures are returned in the Outcome; the ones
// that need an operator (Google API and storage errors) are also reported to
// an alert.Reporter.
//
// A calendar that was created but could not be recorded is remembered on the
// draft, and the next Confirm only retries the recording step.
package creator
