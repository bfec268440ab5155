package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teemow/discal/internal/gmail"
	"github.com/teemow/discal/internal/logging"
)

// Mailer is the subset of gmail.Client used by EmailSender.
type Mailer interface {
	SendEmail(ctx context.Context, msg *gmail.EmailMessage) (string, error)
}

// EmailSender mails alerts to a fixed recipient list.
type EmailSender struct {
	mailer Mailer
	to     []string
}

// NewEmailSender creates an EmailSender. to must not be empty.
func NewEmailSender(mailer Mailer, to []string) (*EmailSender, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("at least one alert recipient is required")
	}
	return &EmailSender{mailer: mailer, to: to}, nil
}

// Send implements Sender.
func (s *EmailSender) Send(ctx context.Context, a Alert) error {
	_, err := s.mailer.SendEmail(ctx, &gmail.EmailMessage{
		To:      s.to,
		Subject: a.Subject(),
		Body:    a.Body(),
	})
	return err
}

// LogSender writes alerts to a logger. It is used when no alert mailbox is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender. A nil logger means slog.Default().
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, a Alert) error {
	s.logger.LogAttrs(ctx, slog.LevelError, "alert",
		slog.String("alert_id", a.ID),
		slog.String("severity", string(a.Severity)),
		logging.Component(a.Component),
		logging.Guild(a.GuildID),
		slog.String("summary", a.Summary),
		logging.Err(a.Err),
	)
	return nil
}

// Messenger is the subset of signal.Client used by MessageSender.
type Messenger interface {
	Send(ctx context.Context, recipient, message string) error
}

// MessageSender sends a one-line alert summary to chat recipients.
type MessageSender struct {
	messenger  Messenger
	recipients []string
}

// NewMessageSender creates a MessageSender. recipients must not be empty.
func NewMessageSender(messenger Messenger, recipients []string) (*MessageSender, error) {
	if messenger == nil {
		return nil, fmt.Errorf("messenger is required")
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("at least one alert recipient is required")
	}
	return &MessageSender{messenger: messenger, recipients: recipients}, nil
}

// Send implements Sender. Every recipient is tried.
func (s *MessageSender) Send(ctx context.Context, a Alert) error {
	text := a.Subject()
	if a.Err != nil {
		text += ": " + a.Err.Error()
	}
	var errs []error
	for _, r := range s.recipients {
		if err := s.messenger.Send(ctx, r, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MultiSender delivers each alert through every sender.
type MultiSender []Sender

// Send implements Sender. It fails if any sender fails.
func (m MultiSender) Send(ctx context.Context, a Alert) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
