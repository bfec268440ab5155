package alert

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/discal/internal/gmail"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []Alert
	err   error
	block chan struct{}
}

func (s *recordingSender) Send(_ context.Context, a Alert) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, a)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeMailer struct {
	msgs []*gmail.EmailMessage
	err  error
}

func (m *fakeMailer) SendEmail(_ context.Context, msg *gmail.EmailMessage) (string, error) {
	m.msgs = append(m.msgs, msg)
	return "id", m.err
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestNew(t *testing.T) {
	cause := errors.New("acl denied")
	a := New(SeverityCritical, "creator", "G1", "calendar orphaned", cause)

	_, err := uuid.Parse(a.ID)
	assert.NoError(t, err)
	assert.False(t, a.Time.IsZero())
	assert.Equal(t, "[discal critical] creator: calendar orphaned", a.Subject())

	body := a.Body()
	assert.Contains(t, body, a.ID)
	assert.Contains(t, body, "Guild:     G1")
	assert.Contains(t, body, "acl denied")
}

func TestAsyncReporterDelivers(t *testing.T) {
	sender := &recordingSender{}
	r := NewAsyncReporter(sender, 4)

	r.Report(context.Background(), New(SeverityError, "creator", "G1", "one", nil))
	r.Report(context.Background(), New(SeverityError, "creator", "G2", "two", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Close(ctx))

	require.Equal(t, 2, sender.count())
	assert.Equal(t, "one", sender.sent[0].Summary)
	assert.Equal(t, "two", sender.sent[1].Summary)
}

func TestAsyncReporterNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	sender := &recordingSender{block: block}
	var logs bytes.Buffer
	r := NewAsyncReporter(sender, 1, WithLogger(quietLogger(&logs)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			r.Report(context.Background(), New(SeverityError, "creator", "G1", "flood", nil))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Report blocked with a full queue")
	}

	close(block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Close(ctx))

	// One alert in flight plus one queued at most.
	assert.LessOrEqual(t, sender.count(), 2)
	assert.Contains(t, logs.String(), "alert dropped")
}

func TestAsyncReporterAfterClose(t *testing.T) {
	sender := &recordingSender{}
	var logs bytes.Buffer
	r := NewAsyncReporter(sender, 1, WithLogger(quietLogger(&logs)))
	require.NoError(t, r.Close(context.Background()))
	require.NoError(t, r.Close(context.Background()))

	r.Report(context.Background(), New(SeverityError, "creator", "G1", "late", nil))
	assert.Equal(t, 0, sender.count())
	assert.Contains(t, logs.String(), "reporter closed")
}

func TestAsyncReporterLogsSendFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	var logs bytes.Buffer
	r := NewAsyncReporter(sender, 1, WithLogger(quietLogger(&logs)))

	r.Report(context.Background(), New(SeverityCritical, "creator", "G1", "x", nil))
	require.NoError(t, r.Close(context.Background()))

	assert.Contains(t, logs.String(), "alert delivery failed")
	assert.Contains(t, logs.String(), "smtp down")
}

func TestEmailSender(t *testing.T) {
	_, err := NewEmailSender(nil, []string{"ops@example.com"})
	assert.Error(t, err)
	_, err = NewEmailSender(&fakeMailer{}, nil)
	assert.Error(t, err)

	mailer := &fakeMailer{}
	s, err := NewEmailSender(mailer, []string{"ops@example.com"})
	require.NoError(t, err)

	a := New(SeverityError, "creator", "G1", "create failed", errors.New("boom"))
	require.NoError(t, s.Send(context.Background(), a))

	require.Len(t, mailer.msgs, 1)
	assert.Equal(t, []string{"ops@example.com"}, mailer.msgs[0].To)
	assert.Equal(t, a.Subject(), mailer.msgs[0].Subject)
	assert.True(t, strings.Contains(mailer.msgs[0].Body, "boom"))

	mailer.err = errors.New("quota")
	assert.Error(t, s.Send(context.Background(), a))
}

func TestLogSender(t *testing.T) {
	var logs bytes.Buffer
	s := NewLogSender(quietLogger(&logs))

	require.NoError(t, s.Send(context.Background(), New(SeverityCritical, "creator", "G1", "orphaned", errors.New("db locked"))))

	out := logs.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "severity=critical")
	assert.Contains(t, out, "guild_id=G1")
	assert.Contains(t, out, "db locked")
}

type fakeMessenger struct {
	sent map[string]string
	fail map[string]error
}

func (m *fakeMessenger) Send(_ context.Context, recipient, message string) error {
	if err := m.fail[recipient]; err != nil {
		return err
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[recipient] = message
	return nil
}

func TestMessageSender(t *testing.T) {
	_, err := NewMessageSender(nil, []string{"+1"})
	assert.Error(t, err)
	_, err = NewMessageSender(&fakeMessenger{}, nil)
	assert.Error(t, err)

	m := &fakeMessenger{fail: map[string]error{"+2": errors.New("unregistered")}}
	s, err := NewMessageSender(m, []string{"+1", "+2", "group:ops"})
	require.NoError(t, err)

	a := New(SeverityError, "creator", "G1", "create failed", errors.New("quota"))
	err = s.Send(context.Background(), a)
	assert.ErrorContains(t, err, "unregistered")

	assert.Equal(t, a.Subject()+": quota", m.sent["+1"])
	assert.Contains(t, m.sent, "group:ops", "later recipients are still tried")
}

func TestMultiSender(t *testing.T) {
	ok := &recordingSender{}
	broken := &recordingSender{err: errors.New("smtp down")}

	a := New(SeverityCritical, "creator", "G1", "orphaned", nil)
	err := MultiSender{broken, ok}.Send(context.Background(), a)

	assert.ErrorContains(t, err, "smtp down")
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, 1, broken.count())

	assert.NoError(t, MultiSender{ok}.Send(context.Background(), a))
}
