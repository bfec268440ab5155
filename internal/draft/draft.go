package draft

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoDraft is returned when a guild has no draft in the registry.
	ErrNoDraft = errors.New("no calendar draft for guild")

	// ErrConfirmInProgress is returned while another confirm holds the guild's draft.
	ErrConfirmInProgress = errors.New("calendar confirmation already in progress")

	// ErrCalendarPending is returned for a draft whose calendar was created
	// but not saved. Only a confirm may resolve it.
	ErrCalendarPending = errors.New("calendar created but not saved")

	// ErrInvalidDraft is wrapped by every ValidationError.
	ErrInvalidDraft = errors.New("invalid calendar draft")
)

// Resource identifies a calendar that exists in Google Calendar.
type Resource struct {
	ID      string
	Address string
}

// Draft is the in-progress description of one guild's calendar.
type Draft struct {
	GuildID     string
	Name        string
	Description string
	Timezone    string

	// Created is set when a previous confirm created the calendar but could not
	// persist the guild mapping. The next confirm resumes from it.
	Created *Resource
}

// ValidationError lists the fields that keep a draft from being confirmed.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDraft, strings.Join(e.Problems, "; "))
}

// Unwrap lets errors.Is match ErrInvalidDraft.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDraft
}

// Validate reports whether the draft has everything a confirm needs.
func (d Draft) Validate() error {
	var problems []string
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "name is required")
	}
	if err := ValidateTimezone(d.Timezone); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateTimezone accepts an empty string or an IANA zone name known to the tz database.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	// LoadLocation also accepts "Local" and "UTC"; only real zone names are forwarded
	// to Google Calendar.
	if tz == "Local" {
		return fmt.Errorf("timezone %q is not an IANA zone name", tz)
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("timezone %q is not an IANA zone name", tz)
	}
	return nil
}
