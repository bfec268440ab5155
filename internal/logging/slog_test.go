package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		attr  slog.Attr
		key   string
		value string
	}{
		{"operation", Operation("calendar.confirm"), KeyOperation, "calendar.confirm"},
		{"component", Component("creator"), KeyComponent, "creator"},
		{"guild", Guild("266063520112574464"), KeyGuild, "266063520112574464"},
		{"command", Command("calendar"), KeyCommand, "calendar"},
		{"calendar", Calendar("abc123@group.calendar.google.com"), KeyCalendar, "abc123@group.calendar.google.com"},
		{"status", Status(StatusSuccess), KeyStatus, StatusSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.value, tt.attr.Value.String())
		})
	}
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithGuild(WithComponent(WithOperation(logger, "confirm"), "creator"), "G1").Info("done")

	out := buf.String()
	assert.Contains(t, out, "operation=confirm")
	assert.Contains(t, out, "component=creator")
	assert.Contains(t, out, "guild_id=G1")
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("quota exceeded"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "quota exceeded", attr.Value.String())

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("ok", Err(nil))
	assert.NotContains(t, buf.String(), KeyError+"=")
}

func TestAnonymizeUser(t *testing.T) {
	assert.Equal(t, "", AnonymizeUser(""))

	hash1 := AnonymizeUser("123456789012345678")
	hash2 := AnonymizeUser("123456789012345678")
	hash3 := AnonymizeUser("876543210987654321")

	assert.Equal(t, hash1, hash2, "hash should be deterministic")
	assert.NotEqual(t, hash1, hash3)
	assert.Len(t, hash1, 21)
	assert.NotContains(t, hash1, "123456789012345678")
}

func TestUserHash(t *testing.T) {
	attr := UserHash("123456789012345678")
	assert.Equal(t, KeyUserHash, attr.Key)
	assert.Len(t, attr.Value.String(), 21)
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"a_very_long_token_string", "[token:24 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeToken(tt.token))
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "info", FormatJSON)).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	slog.New(NewHandler(&buf, "error", FormatText)).Info("suppressed")
	assert.Empty(t, buf.String())
}
