package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// ReadinessCheck reports whether one dependency is usable.
type ReadinessCheck func() bool

type namedCheck struct {
	name  string
	check ReadinessCheck
}

// HealthChecker backs the /healthz and /readyz probes. The bot is ready once
// SetReady(true) was called, the process is not shutting down and every
// registered check passes.
type HealthChecker struct {
	started atomic.Bool
	sc      *ServerContext
	since   time.Time

	mu     sync.RWMutex
	checks []namedCheck
}

// NewHealthChecker returns a checker that starts out ready. sc may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, since: time.Now()}
	h.started.Store(true)
	return h
}

// SetReady marks startup as complete (or, during shutdown, as withdrawn).
func (h *HealthChecker) SetReady(ready bool) {
	h.started.Store(ready)
}

// AddReadinessCheck adds a named dependency check, such as the Discord
// gateway connection.
func (h *HealthChecker) AddReadinessCheck(name string, check ReadinessCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, namedCheck{name: name, check: check})
}

// IsReady reports whether /readyz would answer 200.
func (h *HealthChecker) IsReady() bool {
	ok, _ := h.evaluate()
	return ok
}

// evaluate runs every check and returns the overall result together with the
// per-check status. "ready" and "shutdown" are always present.
func (h *HealthChecker) evaluate() (bool, map[string]string) {
	h.mu.RLock()
	checks := make([]namedCheck, len(h.checks))
	copy(checks, h.checks)
	h.mu.RUnlock()

	results := make(map[string]string, len(checks)+2)
	ok := true
	mark := func(name string, pass bool, failure string) {
		if pass {
			results[name] = healthStatusOK
			return
		}
		results[name] = failure
		ok = false
	}

	mark("ready", h.started.Load(), healthStatusNotReady)
	mark("shutdown", !h.shuttingDown(), healthStatusShuttingDown)
	for _, c := range checks {
		mark(c.name, c.check(), healthStatusNotReady)
	}
	return ok, results
}

func (h *HealthChecker) shuttingDown() bool {
	return h.sc != nil && h.sc.IsShutdown()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LivenessHandler answers 200 as long as the process can serve HTTP.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers 200 when IsReady and 503 otherwise, listing every
// check in the body.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ok, checks := h.evaluate()
		if !ok {
			writeHealth(w, http.StatusServiceUnavailable, HealthResponse{Status: healthStatusNotReady, Checks: checks})
			return
		}
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK, Checks: checks})
	})
}

// DetailedHealthHandler is ReadinessHandler plus uptime.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ok, checks := h.evaluate()
		resp := DetailedHealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.since).Truncate(time.Second).String(),
			Checks: checks,
		}
		code := http.StatusOK
		switch {
		case h.shuttingDown():
			resp.Status, code = healthStatusShuttingDown, http.StatusServiceUnavailable
		case !ok:
			resp.Status, code = healthStatusNotReady, http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	})
}

// RegisterHealthEndpoints mounts the probes on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
