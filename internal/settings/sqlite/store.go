// Package sqlite provides a SQLite-backed settings.Store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teemow/discal/internal/settings"
	"github.com/teemow/discal/internal/settings/sqlite/migrations"
)

// Store persists guild settings and calendar records in SQLite.
type Store struct {
	db *sql.DB
}

var _ settings.Store = (*Store)(nil)

// Open opens (or creates) the database at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetSettings implements settings.Store.
func (s *Store) GetSettings(ctx context.Context, guildID string) (settings.GuildSettings, error) {
	if err := ctx.Err(); err != nil {
		return settings.GuildSettings{}, err
	}

	out := settings.GuildSettings{GuildID: guildID}
	err := s.db.QueryRowContext(ctx,
		`SELECT control_role, restricted_channel FROM guild_settings WHERE guild_id = ?`,
		guildID,
	).Scan(&out.ControlRole, &out.RestrictedChannel)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.DefaultSettings(guildID), nil
	}
	if err != nil {
		return settings.GuildSettings{}, fmt.Errorf("get guild settings: %w", err)
	}
	return out.Normalize(), nil
}

// PutSettings implements settings.Store.
func (s *Store) PutSettings(ctx context.Context, gs settings.GuildSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(gs.GuildID) == "" {
		return fmt.Errorf("guild id is required")
	}
	gs = gs.Normalize()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO guild_settings (guild_id, control_role, restricted_channel, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET
		   control_role = excluded.control_role,
		   restricted_channel = excluded.restricted_channel,
		   updated_at = excluded.updated_at`,
		gs.GuildID, gs.ControlRole, gs.RestrictedChannel, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put guild settings: %w", err)
	}
	return nil
}

// GetResourceRecord implements settings.Store.
func (s *Store) GetResourceRecord(ctx context.Context, guildID string) (settings.ResourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return settings.ResourceRecord{}, err
	}

	rec := settings.ResourceRecord{GuildID: guildID}
	var state int
	err := s.db.QueryRowContext(ctx,
		`SELECT calendar_number, calendar_id, calendar_address, state
		 FROM guild_calendars WHERE guild_id = ?`,
		guildID,
	).Scan(&rec.CalendarNumber, &rec.CalendarID, &rec.CalendarAddress, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.ResourceRecord{}, settings.ErrNotFound
	}
	if err != nil {
		return settings.ResourceRecord{}, fmt.Errorf("get calendar record: %w", err)
	}
	rec.State = settings.RecordState(state)
	return rec, nil
}

// PutResourceRecord implements settings.Store.
func (s *Store) PutResourceRecord(ctx context.Context, rec settings.ResourceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rec.GuildID) == "" {
		return fmt.Errorf("guild id is required")
	}
	if rec.CalendarNumber == 0 {
		rec.CalendarNumber = settings.DefaultCalendarNumber
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO guild_calendars (guild_id, calendar_number, calendar_id, calendar_address, state, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET
		   calendar_number = excluded.calendar_number,
		   calendar_id = excluded.calendar_id,
		   calendar_address = excluded.calendar_address,
		   state = excluded.state,
		   updated_at = excluded.updated_at`,
		rec.GuildID, rec.CalendarNumber, rec.CalendarID, rec.CalendarAddress, int(rec.State), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put calendar record: %w", err)
	}
	return nil
}
