package settings

import (
	"context"
	"fmt"
	"sync"
)

// Store persists guild settings and calendar records. Records are keyed by
// guild id and overwritten on write.
type Store interface {
	// GetSettings returns the guild's settings, or DefaultSettings if none were saved.
	GetSettings(ctx context.Context, guildID string) (GuildSettings, error)

	// PutSettings replaces the guild's settings.
	PutSettings(ctx context.Context, s GuildSettings) error

	// GetResourceRecord returns ErrNotFound when the guild has no record.
	GetResourceRecord(ctx context.Context, guildID string) (ResourceRecord, error)

	// PutResourceRecord inserts or replaces the guild's record.
	PutResourceRecord(ctx context.Context, rec ResourceRecord) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	settings map[string]GuildSettings
	records  map[string]ResourceRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		settings: make(map[string]GuildSettings),
		records:  make(map[string]ResourceRecord),
	}
}

// GetSettings implements Store.
func (m *MemoryStore) GetSettings(ctx context.Context, guildID string) (GuildSettings, error) {
	if err := ctx.Err(); err != nil {
		return GuildSettings{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.settings[guildID]; ok {
		return s, nil
	}
	return DefaultSettings(guildID), nil
}

// PutSettings implements Store.
func (m *MemoryStore) PutSettings(ctx context.Context, s GuildSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.GuildID == "" {
		return fmt.Errorf("guild id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.GuildID] = s.Normalize()
	return nil
}

// GetResourceRecord implements Store.
func (m *MemoryStore) GetResourceRecord(ctx context.Context, guildID string) (ResourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return ResourceRecord{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[guildID]
	if !ok {
		return ResourceRecord{}, ErrNotFound
	}
	return rec, nil
}

// PutResourceRecord implements Store.
func (m *MemoryStore) PutResourceRecord(ctx context.Context, rec ResourceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.GuildID == "" {
		return fmt.Errorf("guild id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.GuildID] = rec
	return nil
}
