package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/teemow/discal/internal/command"
	"github.com/teemow/discal/internal/logging"
)

// maxMessageLength is Discord's limit for message content.
const maxMessageLength = 2000

// Intents the bot needs: guild metadata and message content.
const Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent

// Router routes a chat message to a command. *command.Router implements it.
type Router interface {
	Route(ctx context.Context, msg command.Message) (reply string, ok bool)
}

// Bot relays guild messages between a Discord session and a Router.
type Bot struct {
	session *discordgo.Session
	router  Router
	logger  *slog.Logger

	ctx      context.Context
	ready    atomic.Bool
	inflight sync.WaitGroup
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the bot's logger. It also receives the discordgo library log.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewSession creates a gateway session for a bot token with the intents the
// bot needs. It does not connect.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	return session, nil
}

// NewBot relays messages from session to router. Call Open to connect.
func NewBot(session *discordgo.Session, router Router, opts ...Option) *Bot {
	b := &Bot{
		session: session,
		router:  router,
		logger:  slog.Default(),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.WithComponent(b.logger, "discord")
	InstallLogger(logging.NewSlogAdapter(b.logger))

	session.AddHandler(b.onReady)
	session.AddHandler(b.onDisconnect)
	session.AddHandler(b.onResumed)
	session.AddHandler(b.onMessage)
	return b
}

// Session returns the underlying discordgo session.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Open connects to the gateway. ctx is the parent of every command handled
// by the bot.
func (b *Bot) Open(ctx context.Context) error {
	b.ctx = ctx
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	return nil
}

// Close disconnects and waits for in-flight commands to finish.
func (b *Bot) Close() error {
	b.ready.Store(false)
	err := b.session.Close()
	b.inflight.Wait()
	if err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

// Ready reports whether the gateway connection is up.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.ready.Store(true)
	b.logger.Info("connected to discord", "guilds", len(r.Guilds))
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.ready.Store(false)
	b.logger.Warn("disconnected from discord")
}

func (b *Bot) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	b.ready.Store(true)
	b.logger.Info("discord session resumed")
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	self := ""
	if s.State != nil && s.State.User != nil {
		self = s.State.User.ID
	}
	b.handle(b.ctx, self, m.Message, func(channelID, content string) error {
		_, err := s.ChannelMessageSend(channelID, content)
		return err
	})
}

func (b *Bot) handle(ctx context.Context, selfID string, m *discordgo.Message, send func(channelID, content string) error) {
	msg, ok := toMessage(selfID, m)
	if !ok {
		return
	}

	b.inflight.Add(1)
	defer b.inflight.Done()

	reply, ok := b.router.Route(ctx, msg)
	if !ok || reply == "" {
		return
	}
	if err := send(msg.ChannelID, truncate(reply, maxMessageLength)); err != nil {
		b.logger.Error("failed to send reply",
			logging.Guild(msg.GuildID),
			slog.String("channel_id", msg.ChannelID),
			logging.Err(err))
	}
}

// toMessage converts a gateway message. Messages from bots, including this
// one, are dropped.
func toMessage(selfID string, m *discordgo.Message) (command.Message, bool) {
	if m == nil || m.Author == nil || m.Author.Bot || m.Author.ID == selfID {
		return command.Message{}, false
	}
	return command.Message{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		Content:   m.Content,
	}, true
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
