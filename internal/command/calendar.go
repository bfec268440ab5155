package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teemow/discal/internal/calendar"
	"github.com/teemow/discal/internal/creator"
	"github.com/teemow/discal/internal/draft"
	"github.com/teemow/discal/internal/settings"
)

const calendarUsage = "Usage: `!calendar create <name>`, `!calendar name|description <text>`, " +
	"`!calendar timezone <zone>`, `!calendar review`, `!calendar confirm`, `!calendar cancel`"

// ErrCalendarExists is returned by `!calendar create` when the guild already
// has a calendar.
var ErrCalendarExists = errors.New("guild already has a calendar")

// CalendarCommand implements `!calendar`.
type CalendarCommand struct {
	gate     Authorizer
	registry *draft.Registry
	creator  Confirmer
	records  RecordReader
}

// NewCalendarCommand creates the `!calendar` command.
func NewCalendarCommand(gate Authorizer, registry *draft.Registry, confirmer Confirmer, records RecordReader) *CalendarCommand {
	return &CalendarCommand{gate: gate, registry: registry, creator: confirmer, records: records}
}

// Name implements Command.
func (c *CalendarCommand) Name() string {
	return "calendar"
}

// Handle implements Command.
func (c *CalendarCommand) Handle(ctx context.Context, req Request) (string, error) {
	sub := req.Sub()
	switch sub {
	case "review":
		return c.review(req.GuildID)
	case "create", "name", "description", "timezone", "confirm", "cancel":
	default:
		return calendarUsage, ErrUsage
	}

	if reply, err := authorize(ctx, c.gate, req); err != nil {
		return reply, err
	}

	switch sub {
	case "create":
		return c.create(ctx, req)
	case "name":
		return c.setName(req)
	case "description":
		return c.setDescription(req)
	case "timezone":
		return c.setTimezone(req)
	case "confirm":
		return c.confirm(ctx, req.GuildID)
	default:
		return c.cancel(req.GuildID)
	}
}

func (c *CalendarCommand) create(ctx context.Context, req Request) (string, error) {
	name := req.Rest()
	if name == "" {
		return "Usage: `!calendar create <name>`", ErrUsage
	}

	rec, err := c.records.GetResourceRecord(ctx, req.GuildID)
	switch {
	case err == nil && rec.State == settings.StateActive:
		return "This server already has a calendar: " + calendar.PublicURL(rec.CalendarAddress), ErrCalendarExists
	case err != nil && !errors.Is(err, settings.ErrNotFound):
		return "Could not check for an existing calendar. Please try again later.", err
	}

	d, created := c.registry.Begin(req.GuildID, name)
	if !created {
		return "A calendar draft already exists:\n" + formatDraft(d) +
			"\nEdit it, `!calendar confirm` it or `!calendar cancel` it.", nil
	}
	return fmt.Sprintf("Started a calendar draft named %q. Set `description` and `timezone`, then `!calendar confirm`.", d.Name), nil
}

func (c *CalendarCommand) setName(req Request) (string, error) {
	name := req.Rest()
	if name == "" {
		return "Usage: `!calendar name <text>`", ErrUsage
	}
	d, err := c.registry.Update(req.GuildID, func(d *draft.Draft) error {
		d.Name = name
		return nil
	})
	if err != nil {
		return draftErrorReply(err), err
	}
	return fmt.Sprintf("Name set to %q.", d.Name), nil
}

func (c *CalendarCommand) setDescription(req Request) (string, error) {
	desc := req.Rest()
	if desc == "" {
		return "Usage: `!calendar description <text>`", ErrUsage
	}
	_, err := c.registry.Update(req.GuildID, func(d *draft.Draft) error {
		d.Description = desc
		return nil
	})
	if err != nil {
		return draftErrorReply(err), err
	}
	return "Description updated.", nil
}

func (c *CalendarCommand) setTimezone(req Request) (string, error) {
	if len(req.Args) != 2 {
		return "Usage: `!calendar timezone <zone>`, e.g. `America/New_York`", ErrUsage
	}
	tz := req.Args[1]
	if err := draft.ValidateTimezone(tz); err != nil {
		return fmt.Sprintf("Unknown time zone %q. Use an IANA name such as `America/New_York`.", tz),
			&draft.ValidationError{Problems: []string{err.Error()}}
	}
	_, err := c.registry.Update(req.GuildID, func(d *draft.Draft) error {
		d.Timezone = tz
		return nil
	})
	if err != nil {
		return draftErrorReply(err), err
	}
	return fmt.Sprintf("Time zone set to %s.", tz), nil
}

func (c *CalendarCommand) review(guildID string) (string, error) {
	d, ok := c.registry.Get(guildID)
	if !ok {
		return draftErrorReply(draft.ErrNoDraft), nil
	}
	return formatDraft(d), nil
}

func (c *CalendarCommand) confirm(ctx context.Context, guildID string) (string, error) {
	out := c.creator.Confirm(ctx, guildID)
	if out.Success {
		return "Calendar created! " + calendar.PublicURL(out.Resource.Address), nil
	}

	var (
		xerr *creator.ExternalCallError
		perr *creator.PersistenceError
	)
	switch {
	case errors.As(out.Err, &xerr):
		return "Google Calendar did not accept the request. Your draft was kept; please try `!calendar confirm` again later.", out.Err
	case errors.As(out.Err, &perr):
		return "The calendar was created but could not be saved. The bot operators were notified; `!calendar confirm` will retry.", out.Err
	default:
		return draftErrorReply(out.Err), out.Err
	}
}

func (c *CalendarCommand) cancel(guildID string) (string, error) {
	if c.registry.Terminate(guildID) {
		return "Calendar draft discarded.", nil
	}
	d, ok := c.registry.Get(guildID)
	switch {
	case !ok:
		return draftErrorReply(draft.ErrNoDraft), draft.ErrNoDraft
	case d.Created != nil:
		return draftErrorReply(draft.ErrCalendarPending), draft.ErrCalendarPending
	default:
		return draftErrorReply(draft.ErrConfirmInProgress), draft.ErrConfirmInProgress
	}
}

func draftErrorReply(err error) string {
	var verr *draft.ValidationError
	switch {
	case errors.Is(err, draft.ErrNoDraft):
		return "There is no calendar draft. Start one with `!calendar create <name>`."
	case errors.Is(err, draft.ErrConfirmInProgress):
		return "The calendar is being created right now. Please wait a moment."
	case errors.Is(err, draft.ErrCalendarPending):
		return "The calendar already exists in Google but is not saved yet, so the draft can no longer be changed or cancelled. Run `!calendar confirm` to finish setup."
	case errors.As(err, &verr):
		return "The draft cannot be confirmed: " + strings.Join(verr.Problems, "; ") + "."
	default:
		return "Something went wrong. Please try again later."
	}
}

func formatDraft(d draft.Draft) string {
	orNone := func(s string) string {
		if s == "" {
			return "(not set)"
		}
		return s
	}

	var b strings.Builder
	b.WriteString("Calendar draft\n")
	b.WriteString("Name: " + orNone(d.Name) + "\n")
	b.WriteString("Description: " + orNone(d.Description) + "\n")
	b.WriteString("Time zone: " + orNone(d.Timezone))
	if d.Created != nil {
		b.WriteString("\nCreated, not yet saved: " + d.Created.ID)
	}
	return b.String()
}
