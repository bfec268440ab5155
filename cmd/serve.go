package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/discal/internal/alert"
	"github.com/teemow/discal/internal/authz"
	"github.com/teemow/discal/internal/calendar"
	"github.com/teemow/discal/internal/command"
	"github.com/teemow/discal/internal/config"
	"github.com/teemow/discal/internal/creator"
	"github.com/teemow/discal/internal/discord"
	"github.com/teemow/discal/internal/draft"
	"github.com/teemow/discal/internal/gmail"
	"github.com/teemow/discal/internal/google"
	"github.com/teemow/discal/internal/instrumentation"
	"github.com/teemow/discal/internal/logging"
	"github.com/teemow/discal/internal/server"
	"github.com/teemow/discal/internal/settings"
	"github.com/teemow/discal/internal/settings/sqlite"
	"github.com/teemow/discal/internal/signal"
)

// DefaultShutdownTimeout bounds the graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// serveFlags override the environment configuration.
type serveFlags struct {
	debug          bool
	prefix         string
	storage        string
	metricsEnabled bool
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and run the bot",
		Long: `Connect to Discord and answer !calendar and !discal commands.

Configuration comes from the environment and an optional .env file:
  DISCORD_TOKEN               Bot token (required)
  GOOGLE_CLIENT_ID/SECRET     OAuth client used for the Google account
  DISCAL_GOOGLE_ACCOUNT       Account authorized with 'discal auth' (default "default")
  DISCAL_STORAGE              sqlite or memory (default sqlite)
  DISCAL_SQLITE_PATH          Database file (default discal.db)
  DISCAL_ALERT_EMAIL_TO       Comma-separated alert email recipients
  DISCAL_ALERT_SIGNAL_FROM/TO Signal account and recipients for alerts (needs signal-cli)
  DISCAL_HTTP_ADDR            Health endpoints (default :8080)
  DISCAL_METRICS_ADDR         Prometheus /metrics (default :9090)

Instrumentation is configured with the standard OTEL_* and METRICS_EXPORTER
variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyServeFlags(cmd, &cfg, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cfg, flags.metricsEnabled)
		},
	}

	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "Command prefix (overrides DISCAL_PREFIX)")
	cmd.Flags().StringVar(&flags.storage, "storage", "", "Storage backend: sqlite or memory (overrides DISCAL_STORAGE)")
	cmd.Flags().BoolVar(&flags.metricsEnabled, "metrics", true, "Serve Prometheus metrics on DISCAL_METRICS_ADDR")

	return cmd
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config, flags serveFlags) {
	if flags.debug {
		cfg.LogLevel = "debug"
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Prefix = flags.prefix
	}
	if cmd.Flags().Changed("storage") {
		cfg.Storage = strings.ToLower(flags.storage)
	}
}

func runServe(cfg config.Config, metricsEnabled bool) error {
	// Setup graceful shutdown
	signalCtx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(logging.NewHandler(os.Stderr, cfg.LogLevel, cfg.LogFormat))
	slog.SetDefault(logger)

	// The server context outlives the signal so in-flight commands can finish.
	sc := server.NewServerContext(context.Background(), logger)
	shutdown := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return sc.Shutdown(ctx)
	}

	app, err := buildApp(signalCtx, sc, cfg, logger, metricsEnabled)
	if err != nil {
		return errors.Join(err, shutdown())
	}

	serverErr := make(chan error, 2)
	go func() {
		if err := app.health.Start(); err != nil {
			serverErr <- fmt.Errorf("health server: %w", err)
		}
	}()
	if app.metricsServer != nil {
		go func() {
			if err := app.metricsServer.Start(); err != nil {
				serverErr <- fmt.Errorf("metrics server: %w", err)
			}
		}()
		select {
		case <-app.metricsServer.Ready():
		case <-time.After(5 * time.Second):
			return errors.Join(fmt.Errorf("metrics server startup timed out"), shutdown())
		}
	}

	if err := app.bot.Open(sc.Context()); err != nil {
		return errors.Join(err, shutdown())
	}
	sc.OnShutdown("discord", func(context.Context) error { return app.bot.Close() })
	app.checker.SetReady(true)

	logger.Info("discal is running",
		slog.String("version", version),
		slog.String("prefix", cfg.Prefix),
		slog.String("storage", cfg.Storage),
		slog.String("health_addr", cfg.HTTPAddr))

	var runErr error
	select {
	case <-signalCtx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-serverErr:
		logger.Error("server failed", logging.Err(runErr))
	}

	app.checker.SetReady(false)
	return errors.Join(runErr, shutdown())
}

// app holds the long-running parts started by runServe.
type app struct {
	bot           *discord.Bot
	checker       *server.HealthChecker
	health        *server.HealthServer
	metricsServer *server.MetricsServer
}

// buildApp wires every component and registers its shutdown on sc. Hooks
// run in reverse, so the store outlives the alert queue and instrumentation
// outlives both.
func buildApp(ctx context.Context, sc *server.ServerContext, cfg config.Config, logger *slog.Logger, metricsEnabled bool) (*app, error) {
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	sc.OnShutdown("instrumentation", provider.Shutdown)
	metrics := provider.Metrics()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sc.OnShutdown("store", func(context.Context) error { return closeStore() })

	creds := google.Credentials{ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	tokens := google.NewFileTokenProvider(creds)
	if !tokens.HasTokenForAccount(cfg.GoogleAccount) {
		return nil, errors.New(google.GetAuthenticationErrorMessage(cfg.GoogleAccount))
	}

	calendars, err := calendar.NewClientForAccount(ctx, cfg.GoogleAccount, creds, tokens,
		calendar.WithTimeout(cfg.GoogleAPITimeout),
		calendar.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}

	sender, err := newAlertSender(cfg, logger, alertChannels{
		mailer: func() (alert.Mailer, error) {
			return gmail.NewClientForAccount(ctx, cfg.GoogleAccount, creds, tokens,
				gmail.WithTimeout(cfg.GoogleAPITimeout),
				gmail.WithMetrics(metrics))
		},
		messenger: func() (alert.Messenger, error) {
			return signal.NewClient(cfg.AlertSignalFrom)
		},
	})
	if err != nil {
		return nil, err
	}
	reporter := alert.NewAsyncReporter(sender, cfg.AlertQueueSize,
		alert.WithLogger(logger),
		alert.WithMetrics(metrics))
	sc.OnShutdown("alerts", reporter.Close)

	registry := draft.NewRegistry()
	if err := metrics.ObserveActiveDrafts(registry.Len); err != nil {
		logger.Warn("failed to register active drafts gauge", logging.Err(err))
	}
	coordinator := creator.New(registry, calendars, store, reporter,
		creator.WithLogger(logger),
		creator.WithMetrics(metrics))

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return nil, err
	}
	gate := authz.NewGate(store, discord.NewMemberSource(session))

	audit := instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	router := command.NewRouter(store, gate,
		[]command.Command{
			command.NewConfigCommand(gate, store, discord.NewDirectory(session)),
			command.NewCalendarCommand(gate, registry, coordinator, store),
		},
		command.WithPrefix(cfg.Prefix),
		command.WithAudit(audit),
		command.WithMetrics(metrics),
		command.WithLogger(logger))

	bot := discord.NewBot(session, router, discord.WithLogger(logger))

	checker := server.NewHealthChecker(sc)
	checker.SetReady(false)
	checker.AddReadinessCheck("discord", bot.Ready)
	health := server.NewHealthServer(cfg.HTTPAddr, checker, metrics)
	sc.OnShutdown("health server", health.Shutdown)

	var metricsServer *server.MetricsServer
	if metricsEnabled && provider.ServesPrometheus() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics server: %w", err)
		}
		sc.OnShutdown("metrics server", metricsServer.Shutdown)
	}

	return &app{bot: bot, checker: checker, health: health, metricsServer: metricsServer}, nil
}

// openStore opens the configured settings store and returns its closer.
func openStore(ctx context.Context, cfg config.Config) (settings.Store, func() error, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return settings.NewMemoryStore(), func() error { return nil }, nil
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage %q", cfg.Storage)
	}
}

// alertChannels build the optional alert transports on demand.
type alertChannels struct {
	mailer    func() (alert.Mailer, error)
	messenger func() (alert.Messenger, error)
}

// newAlertSender sends alerts through every configured channel: email,
// Signal or both. Without any it logs them.
func newAlertSender(cfg config.Config, logger *slog.Logger, channels alertChannels) (alert.Sender, error) {
	var senders alert.MultiSender

	if to := parseCommaSeparatedList(cfg.AlertEmailTo); len(to) > 0 {
		m, err := channels.mailer()
		if err != nil {
			return nil, fmt.Errorf("failed to create alert mailer: %w", err)
		}
		email, err := alert.NewEmailSender(m, to)
		if err != nil {
			return nil, err
		}
		senders = append(senders, email)
	}

	if to := parseCommaSeparatedList(cfg.AlertSignalTo); len(to) > 0 {
		m, err := channels.messenger()
		if err != nil {
			return nil, fmt.Errorf("failed to create signal client: %w", err)
		}
		chat, err := alert.NewMessageSender(m, to)
		if err != nil {
			return nil, err
		}
		senders = append(senders, chat)
	}

	switch len(senders) {
	case 0:
		logger.Warn("DISCAL_ALERT_EMAIL_TO and DISCAL_ALERT_SIGNAL_TO are empty, failure alerts are only logged")
		return alert.NewLogSender(logger), nil
	case 1:
		return senders[0], nil
	default:
		return senders, nil
	}
}

// parseCommaSeparatedList parses a comma-separated string into a slice of trimmed, non-empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
