package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/discal/internal/logging"
)

// ShutdownFunc releases one component during shutdown.
type ShutdownFunc func(ctx context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// ServerContext owns the bot's lifetime context and the components that
// must be released when it ends.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *slog.Logger
	hooks    []shutdownHook
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context derived from ctx.
func NewServerContext(ctx context.Context, logger *slog.Logger) *ServerContext {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		logger: logging.WithComponent(logger, "server"),
	}
}

// Context returns the server context. It is cancelled once Shutdown has run
// the hooks, so in-flight commands can finish first.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// OnShutdown registers fn to run during Shutdown. Hooks run in reverse
// registration order, so register dependencies before their users.
func (sc *ServerContext) OnShutdown(name string, fn ShutdownFunc) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.hooks = append(sc.hooks, shutdownHook{name: name, fn: fn})
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown runs every hook, even if some fail, and then cancels the server
// context. It is safe to call more than once.
func (sc *ServerContext) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	hooks := sc.hooks
	sc.hooks = nil
	sc.mu.Unlock()
	defer sc.cancel()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := h.fn(ctx); err != nil {
			sc.logger.Error("shutdown step failed", logging.Operation(h.name), logging.Err(err))
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		sc.logger.Debug("shutdown step completed", logging.Operation(h.name))
	}
	return errors.Join(errs...)
}
