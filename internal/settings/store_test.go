package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSettings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.GetSettings(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings("G1"), got)

	require.NoError(t, store.PutSettings(ctx, GuildSettings{GuildID: "G1", ControlRole: "R1"}))
	got, err = store.GetSettings(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, "R1", got.ControlRole)
	assert.Equal(t, ChannelAll, got.RestrictedChannel, "empty fields are normalized")

	assert.Error(t, store.PutSettings(ctx, GuildSettings{}))
}

func TestMemoryStoreRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetResourceRecord(ctx, "G1")
	assert.ErrorIs(t, err, ErrNotFound)

	rec := ResourceRecord{GuildID: "G1", CalendarNumber: 1, CalendarID: "abc123", CalendarAddress: "abc123", State: StateActive}
	require.NoError(t, store.PutResourceRecord(ctx, rec))
	require.NoError(t, store.PutResourceRecord(ctx, rec), "writes are idempotent")

	got, err := store.GetResourceRecord(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	rec.CalendarID = "def456"
	require.NoError(t, store.PutResourceRecord(ctx, rec))
	got, _ = store.GetResourceRecord(ctx, "G1")
	assert.Equal(t, "def456", got.CalendarID, "records are overwritten by guild id")
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	_, err := store.GetSettings(ctx, "G1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.PutResourceRecord(ctx, ResourceRecord{GuildID: "G1"}), context.Canceled)
}

func TestGuildSettingsHelpers(t *testing.T) {
	s := DefaultSettings("G1")
	assert.True(t, s.OpenToEveryone())
	assert.True(t, s.AllowsChannel("C1"))

	s.ControlRole = "R1"
	s.RestrictedChannel = "C1"
	assert.False(t, s.OpenToEveryone())
	assert.True(t, s.AllowsChannel("C1"))
	assert.False(t, s.AllowsChannel("C2"))

	s.ControlRole = "Everyone"
	assert.True(t, s.OpenToEveryone())
}

func TestRecordStateString(t *testing.T) {
	assert.Equal(t, "none", StateNone.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "active", StateActive.String())
}
