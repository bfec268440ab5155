package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/teemow/discal/internal/alert"
	"github.com/teemow/discal/internal/config"
	"github.com/teemow/discal/internal/gmail"
	"github.com/teemow/discal/internal/settings"
)

func TestParseCommaSeparatedList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "ops@example.com",
			expected: []string{"ops@example.com"},
		},
		{
			name:     "multiple values",
			input:    "ops@example.com,oncall@example.com",
			expected: []string{"ops@example.com", "oncall@example.com"},
		},
		{
			name:     "values with spaces around comma",
			input:    "ops@example.com, oncall@example.com",
			expected: []string{"ops@example.com", "oncall@example.com"},
		},
		{
			name:     "values with leading/trailing spaces",
			input:    "  ops@example.com  ,  oncall@example.com  ",
			expected: []string{"ops@example.com", "oncall@example.com"},
		},
		{
			name:     "trailing comma",
			input:    "ops@example.com,oncall@example.com,",
			expected: []string{"ops@example.com", "oncall@example.com"},
		},
		{
			name:     "leading comma",
			input:    ",ops@example.com,oncall@example.com",
			expected: []string{"ops@example.com", "oncall@example.com"},
		},
		{
			name:     "multiple consecutive commas",
			input:    "ops@example.com,,oncall@example.com",
			expected: []string{"ops@example.com", "oncall@example.com"},
		},
		{
			name:     "only commas and spaces",
			input:    ",  , , ",
			expected: []string{},
		},
		{
			name:     "single value with surrounding whitespace",
			input:    "  ops@example.com  ",
			expected: []string{"ops@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseCommaSeparatedList(tt.input)

			// Handle nil vs empty slice comparison
			if tt.expected == nil {
				if result != nil {
					t.Errorf("parseCommaSeparatedList(%q) = %v, want nil", tt.input, result)
				}
				return
			}

			if len(result) != len(tt.expected) {
				t.Errorf("parseCommaSeparatedList(%q) = %v (len %d), want %v (len %d)",
					tt.input, result, len(result), tt.expected, len(tt.expected))
				return
			}

			for i, v := range result {
				if v != tt.expected[i] {
					t.Errorf("parseCommaSeparatedList(%q)[%d] = %q, want %q",
						tt.input, i, v, tt.expected[i])
				}
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, closeStore, err := openStore(ctx, config.Config{Storage: config.StorageMemory})
	if err != nil {
		t.Fatalf("openStore(memory) error = %v", err)
	}
	if _, ok := store.(*settings.MemoryStore); !ok {
		t.Errorf("openStore(memory) = %T, want *settings.MemoryStore", store)
	}
	if err := closeStore(); err != nil {
		t.Errorf("close memory store: %v", err)
	}

	store, closeStore, err = openStore(ctx, config.Config{
		Storage:    config.StorageSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "discal.db"),
	})
	if err != nil {
		t.Fatalf("openStore(sqlite) error = %v", err)
	}
	if err := store.PutSettings(ctx, settings.GuildSettings{GuildID: "G1", ControlRole: "R1"}); err != nil {
		t.Errorf("PutSettings() error = %v", err)
	}
	if err := closeStore(); err != nil {
		t.Errorf("close sqlite store: %v", err)
	}

	if _, _, err := openStore(ctx, config.Config{Storage: "postgres"}); err == nil {
		t.Error("openStore(postgres) expected error")
	}
}

type nopMailer struct{}

func (nopMailer) SendEmail(context.Context, *gmail.EmailMessage) (string, error) { return "id", nil }

type nopMessenger struct{}

func (nopMessenger) Send(context.Context, string, string) error { return nil }

func TestNewAlertSender(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	built := 0
	channels := alertChannels{
		mailer: func() (alert.Mailer, error) {
			built++
			return nopMailer{}, nil
		},
		messenger: func() (alert.Messenger, error) {
			built++
			return nopMessenger{}, nil
		},
	}

	sender, err := newAlertSender(config.Config{}, logger, channels)
	if err != nil {
		t.Fatalf("newAlertSender() error = %v", err)
	}
	if _, ok := sender.(*alert.LogSender); !ok {
		t.Errorf("sender = %T, want *alert.LogSender", sender)
	}
	if built != 0 {
		t.Error("channels built without recipients")
	}
	if !strings.Contains(buf.String(), "only logged") {
		t.Error("missing warning about log-only alerts")
	}

	sender, err = newAlertSender(config.Config{AlertEmailTo: "ops@example.com, oncall@example.com"}, logger, channels)
	if err != nil {
		t.Fatalf("newAlertSender() error = %v", err)
	}
	if _, ok := sender.(*alert.EmailSender); !ok {
		t.Errorf("sender = %T, want *alert.EmailSender", sender)
	}

	sender, err = newAlertSender(config.Config{
		AlertEmailTo:    "ops@example.com",
		AlertSignalFrom: "+15551234567",
		AlertSignalTo:   "+15559876543",
	}, logger, channels)
	if err != nil {
		t.Fatalf("newAlertSender() error = %v", err)
	}
	if multi, ok := sender.(alert.MultiSender); !ok || len(multi) != 2 {
		t.Errorf("sender = %#v, want MultiSender with email and signal", sender)
	}

	_, err = newAlertSender(config.Config{AlertEmailTo: "ops@example.com"}, logger, alertChannels{
		mailer: func() (alert.Mailer, error) { return nil, errors.New("no token") },
	})
	if err == nil || !strings.Contains(err.Error(), "no token") {
		t.Errorf("newAlertSender() error = %v, want mailer error", err)
	}
}

func TestApplyServeFlags(t *testing.T) {
	cmd := newServeCmd()
	if err := cmd.Flags().Parse([]string{"--debug", "--prefix", "?", "--storage", "MEMORY"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := config.Config{Prefix: "!", Storage: config.StorageSQLite, LogLevel: "info"}
	applyServeFlags(cmd, &cfg, serveFlags{debug: true, prefix: "?", storage: "MEMORY"})

	if cfg.LogLevel != "debug" || cfg.Prefix != "?" || cfg.Storage != config.StorageMemory {
		t.Errorf("applyServeFlags() = %+v", cfg)
	}

	untouched := config.Config{Prefix: "!", Storage: config.StorageSQLite}
	applyServeFlags(&cobra.Command{}, &untouched, serveFlags{})
	if untouched.Prefix != "!" || untouched.Storage != config.StorageSQLite {
		t.Errorf("unchanged flags modified config: %+v", untouched)
	}
}

type fakeAuth struct {
	account, code string
	err           error
}

func (f *fakeAuth) AuthCodeURL(state string) string { return "https://accounts.example/auth?state=" + state }

func (f *fakeAuth) Exchange(_ context.Context, account, code string) error {
	f.account, f.code = account, code
	return f.err
}

func TestRunAuth(t *testing.T) {
	auth := &fakeAuth{}
	var out bytes.Buffer

	if err := runAuth(context.Background(), auth, "default", strings.NewReader("  4/abc \n"), &out); err != nil {
		t.Fatalf("runAuth() error = %v", err)
	}
	if auth.account != "default" || auth.code != "4/abc" {
		t.Errorf("Exchange(%q, %q)", auth.account, auth.code)
	}
	if !strings.Contains(out.String(), "https://accounts.example/auth?state=") {
		t.Errorf("output missing consent URL: %s", out.String())
	}

	if err := runAuth(context.Background(), &fakeAuth{}, "default", strings.NewReader("\n"), &out); err == nil {
		t.Error("runAuth() with empty code expected error")
	}

	failing := &fakeAuth{err: errors.New("invalid_grant")}
	if err := runAuth(context.Background(), failing, "default", strings.NewReader("code"), &out); err == nil {
		t.Error("runAuth() expected exchange error")
	}
}

func TestVersionCmd(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	if out.String() != "discal version 1.2.3\n" {
		t.Errorf("version output = %q", out.String())
	}
}
