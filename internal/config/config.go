// Package config loads the bot's runtime configuration from the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config is the bot configuration.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	Prefix       string `env:"DISCAL_PREFIX" envDefault:"!"`

	GoogleAccount      string        `env:"DISCAL_GOOGLE_ACCOUNT" envDefault:"default"`
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	GoogleAPITimeout   time.Duration `env:"DISCAL_GOOGLE_API_TIMEOUT" envDefault:"15s"`

	Storage    string `env:"DISCAL_STORAGE" envDefault:"sqlite"`
	SQLitePath string `env:"DISCAL_SQLITE_PATH" envDefault:"discal.db"`

	// AlertEmailTo receives failure alerts by email. Empty logs them only.
	AlertEmailTo   string `env:"DISCAL_ALERT_EMAIL_TO"`
	AlertQueueSize int    `env:"DISCAL_ALERT_QUEUE_SIZE" envDefault:"64"`

	// AlertSignalFrom is the signal-cli account that sends alerts to
	// AlertSignalTo (phone numbers or group:<id>). Both empty disables Signal.
	AlertSignalFrom string `env:"DISCAL_ALERT_SIGNAL_FROM"`
	AlertSignalTo   string `env:"DISCAL_ALERT_SIGNAL_TO"`

	HTTPAddr    string `env:"DISCAL_HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"DISCAL_METRICS_ADDR" envDefault:":9090"`

	LogLevel  string `env:"DISCAL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"DISCAL_LOG_FORMAT" envDefault:"text"`
}

// Load reads dotenvFiles (default ".env") if they exist and parses the
// environment. Variables already set take precedence over the files.
func Load(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	return cfg, nil
}

// Validate checks the settings the serve command needs.
func (c Config) Validate() error {
	var problems []string
	if c.DiscordToken == "" {
		problems = append(problems, "DISCORD_TOKEN is required")
	}
	if c.Prefix == "" || strings.ContainsAny(c.Prefix, " \t\n") {
		problems = append(problems, "DISCAL_PREFIX must be non-empty and contain no whitespace")
	}
	if c.GoogleAPITimeout <= 0 {
		problems = append(problems, "DISCAL_GOOGLE_API_TIMEOUT must be positive")
	}
	switch c.Storage {
	case StorageSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "DISCAL_SQLITE_PATH is required for sqlite storage")
		}
	case StorageMemory:
	default:
		problems = append(problems, fmt.Sprintf("DISCAL_STORAGE must be %q or %q, got %q", StorageSQLite, StorageMemory, c.Storage))
	}
	if (c.AlertSignalFrom == "") != (c.AlertSignalTo == "") {
		problems = append(problems, "DISCAL_ALERT_SIGNAL_FROM and DISCAL_ALERT_SIGNAL_TO must be set together")
	}
	if c.AlertQueueSize <= 0 {
		problems = append(problems, "DISCAL_ALERT_QUEUE_SIZE must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
