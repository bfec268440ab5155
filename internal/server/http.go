package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/felixge/httpsnoop"

	"github.com/teemow/discal/internal/instrumentation"
)

// DefaultHealthAddr is the default address for the health server.
const DefaultHealthAddr = ":8080"

// InstrumentHandler records every request served by next as an
// http_requests_total sample.
func InstrumentHandler(next http.Handler, metrics *instrumentation.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, m.Code, m.Duration)
	})
}

// HealthServer serves the health endpoints for orchestrator probes.
type HealthServer struct {
	httpServer *http.Server
	addr       string

	mu       sync.Mutex
	listener net.Listener
}

// NewHealthServer creates a health server for checker on addr.
func NewHealthServer(addr string, checker *HealthChecker, metrics *instrumentation.Metrics) *HealthServer {
	if addr == "" {
		addr = DefaultHealthAddr
	}
	mux := http.NewServeMux()
	checker.RegisterHealthEndpoints(mux)

	return &HealthServer{
		addr: addr,
		httpServer: &http.Server{
			Handler:           InstrumentHandler(mux, metrics),
			ReadHeaderTimeout: DefaultMetricsReadTimeout,
			WriteTimeout:      DefaultMetricsWriteTimeout,
			IdleTimeout:       DefaultMetricsIdleTimeout,
		},
	}
}

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *HealthServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	slog.Info("starting health server", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the health server.
func (s *HealthServer) Shutdown(ctx context.Context) error {
	slog.Info("shutting down health server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound address once started, else the configured one.
func (s *HealthServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
