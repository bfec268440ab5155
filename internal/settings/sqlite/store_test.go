package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/discal/internal/settings"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "discal.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.ErrorContains(t, err, "storage path is required")
}

func TestOpenIsRepeatable(t *testing.T) {
	store, path := openTestStore(t)
	require.NoError(t, store.Close())

	again, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	got, err := store.GetSettings(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultSettings("G1"), got)

	want := settings.GuildSettings{GuildID: "G1", ControlRole: "R1", RestrictedChannel: "C1"}
	require.NoError(t, store.PutSettings(ctx, want))
	got, err = store.GetSettings(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.ControlRole = settings.ControlRoleEveryone
	require.NoError(t, store.PutSettings(ctx, want))
	got, _ = store.GetSettings(ctx, "G1")
	assert.Equal(t, settings.ControlRoleEveryone, got.ControlRole)

	assert.Error(t, store.PutSettings(ctx, settings.GuildSettings{}))
}

func TestResourceRecordOverwrite(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	_, err := store.GetResourceRecord(ctx, "G1")
	assert.ErrorIs(t, err, settings.ErrNotFound)

	rec := settings.ResourceRecord{
		GuildID:         "G1",
		CalendarID:      "abc123",
		CalendarAddress: "abc123",
		State:           settings.StateActive,
	}
	require.NoError(t, store.PutResourceRecord(ctx, rec))
	require.NoError(t, store.PutResourceRecord(ctx, rec))

	got, err := store.GetResourceRecord(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultCalendarNumber, got.CalendarNumber)
	assert.Equal(t, "abc123", got.CalendarID)
	assert.Equal(t, settings.StateActive, got.State)

	rec.CalendarID = "def456"
	rec.CalendarAddress = "def456"
	require.NoError(t, store.PutResourceRecord(ctx, rec))
	got, _ = store.GetResourceRecord(ctx, "G1")
	assert.Equal(t, "def456", got.CalendarID)
}

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id INTEGER);\n", extractUp(content))
	assert.Equal(t, "SELECT 1;", extractUp("SELECT 1;"))
	assert.Equal(t, "\nSELECT 1;", extractUp("-- +migrate Up\nSELECT 1;"))
}
