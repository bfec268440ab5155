package draft

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInit(t *testing.T) {
	r := NewRegistry()

	d := r.Init("G1", "TeamCal")
	assert.Equal(t, Draft{GuildID: "G1", Name: "TeamCal"}, d)
	assert.True(t, r.Has("G1"))
	assert.False(t, r.Has("G2"))
}

func TestRegistryInitIsIdempotent(t *testing.T) {
	r := NewRegistry()

	first := r.Init("G1", "TeamCal")
	second := r.Init("G1", "Other")

	assert.Equal(t, first, second)
	assert.Equal(t, "TeamCal", second.Name)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("G1")
	assert.False(t, ok)

	r.Init("G1", "TeamCal")
	d, ok := r.Get("G1")
	require.True(t, ok)
	assert.Equal(t, "TeamCal", d.Name)

	// Mutating the copy does not touch the stored draft.
	d.Name = "changed"
	stored, _ := r.Get("G1")
	assert.Equal(t, "TeamCal", stored.Name)
}

func TestRegistryTerminate(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.Terminate("G1"), "terminate without a draft")
	assert.Equal(t, 0, r.Len())

	r.Init("G1", "TeamCal")
	r.Init("G2", "Other")
	assert.True(t, r.Terminate("G1"))
	assert.False(t, r.Has("G1"))
	assert.True(t, r.Has("G2"), "other guilds are untouched")
	assert.False(t, r.Terminate("G1"))
}

func TestRegistryUpdate(t *testing.T) {
	r := NewRegistry()

	_, err := r.Update("G1", func(d *Draft) error { return nil })
	assert.ErrorIs(t, err, ErrNoDraft)

	r.Init("G1", "TeamCal")
	d, err := r.Update("G1", func(d *Draft) error {
		d.Timezone = "America/New_York"
		d.Description = "team events"
		d.GuildID = "hijacked"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "G1", d.GuildID)
	assert.Equal(t, "America/New_York", d.Timezone)

	stored, _ := r.Get("G1")
	assert.Equal(t, d, stored)
}

func TestRegistryUpdateErrorLeavesDraft(t *testing.T) {
	r := NewRegistry()
	r.Init("G1", "TeamCal")

	boom := errors.New("bad value")
	d, err := r.Update("G1", func(d *Draft) error {
		d.Name = "half-applied"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "TeamCal", d.Name)

	stored, _ := r.Get("G1")
	assert.Equal(t, "TeamCal", stored.Name)
}

func TestRegistryClaim(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.Claim("G1")
	assert.ErrorIs(t, err, ErrNoDraft)

	r.Init("G1", "TeamCal")
	d, release, err := r.Claim("G1")
	require.NoError(t, err)
	assert.Equal(t, "TeamCal", d.Name)

	_, _, err = r.Claim("G1")
	assert.ErrorIs(t, err, ErrConfirmInProgress)

	_, err = r.Update("G1", func(d *Draft) error { return nil })
	assert.ErrorIs(t, err, ErrConfirmInProgress)

	assert.False(t, r.Terminate("G1"), "claimed drafts cannot be abandoned")

	release(false)
	assert.True(t, r.Has("G1"))

	_, release, err = r.Claim("G1")
	require.NoError(t, err)
	release(true)
	release(false) // second call is a no-op
	assert.False(t, r.Has("G1"))
}

func TestRegistryRemember(t *testing.T) {
	r := NewRegistry()
	r.Remember("G1", Resource{ID: "abc123"}) // no draft, no effect
	assert.False(t, r.Has("G1"))

	r.Init("G1", "TeamCal")
	_, release, err := r.Claim("G1")
	require.NoError(t, err)
	r.Remember("G1", Resource{ID: "abc123", Address: "abc123"})
	release(false)

	d, ok := r.Get("G1")
	require.True(t, ok)
	require.NotNil(t, d.Created)
	assert.Equal(t, "abc123", d.Created.ID)
}

func TestRegistryCreatedDraftIsFrozen(t *testing.T) {
	r := NewRegistry()
	r.Init("G1", "TeamCal")
	_, release, err := r.Claim("G1")
	require.NoError(t, err)
	r.Remember("G1", Resource{ID: "abc123", Address: "abc123"})
	release(false)

	_, err = r.Update("G1", func(d *Draft) error {
		d.Name = "Renamed"
		return nil
	})
	assert.ErrorIs(t, err, ErrCalendarPending)
	assert.False(t, r.Terminate("G1"), "unsaved calendar must stay reachable")

	d, ok := r.Get("G1")
	require.True(t, ok)
	assert.Equal(t, "TeamCal", d.Name)

	// A later confirm may still claim and remove it.
	_, release, err = r.Claim("G1")
	require.NoError(t, err)
	release(true)
	assert.False(t, r.Has("G1"))
}

func TestRegistryBegin(t *testing.T) {
	r := NewRegistry()

	d, created := r.Begin("G1", "TeamCal")
	assert.True(t, created)
	assert.Equal(t, "TeamCal", d.Name)

	d, created = r.Begin("G1", "Other")
	assert.False(t, created)
	assert.Equal(t, "TeamCal", d.Name)
}

func TestRegistryConcurrentInit(t *testing.T) {
	r := NewRegistry()

	const workers = 64
	var wg sync.WaitGroup
	names := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names <- r.Init("G1", fmt.Sprintf("cal-%d", i)).Name
		}(i)
	}
	wg.Wait()
	close(names)

	stored, ok := r.Get("G1")
	require.True(t, ok)
	for name := range names {
		assert.Equal(t, stored.Name, name, "every caller sees the first draft")
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistryConcurrentClaim(t *testing.T) {
	r := NewRegistry()
	r.Init("G1", "TeamCal")

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, release, err := r.Claim("G1")
			if err != nil {
				return
			}
			mu.Lock()
			winners++
			mu.Unlock()
			_ = release
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, winners)
}
