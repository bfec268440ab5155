package creator

import "fmt"

// ExternalCallError is a failed or timed out Google Calendar call.
type ExternalCallError struct {
	Op  string
	Err error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// PersistenceError means the calendar exists in Google but the guild mapping
// could not be stored.
type PersistenceError struct {
	CalendarID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("calendar %s created but not recorded: %v", e.CalendarID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
