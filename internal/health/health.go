// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package health reports liveness and readiness of the agent and the
// collector from a set of component checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/jonboulle/clockwork"

	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
)

// Status represents the health of a component or of the whole process.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the body served by the liveness endpoint.
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse is the body served by the readiness endpoint.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker checks one component.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type checkerFunc struct {
	name string
	fn   func(ctx context.Context) CheckResult
}

func (c checkerFunc) Name() string                          { return c.name }
func (c checkerFunc) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// CheckerFunc adapts fn to a named Checker.
func CheckerFunc(name string, fn func(ctx context.Context) CheckResult) Checker {
	return checkerFunc{name: name, fn: fn}
}

// Manager runs registered checks on demand.
type Manager struct {
	version string
	clock   clockwork.Clock

	mu       sync.RWMutex
	checkers []Checker
}

// NewManager creates a manager with no checks. A nil clock uses the real one.
func NewManager(version string, clock clockwork.Clock) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{version: version, clock: clock}
}

// RegisterChecker adds a check. Checks run in registration order.
func (m *Manager) RegisterChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

func (m *Manager) run(ctx context.Context) (Status, map[string]CheckResult) {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	m.mu.RUnlock()

	status := StatusHealthy
	if len(checkers) == 0 {
		return status, nil
	}
	results := make(map[string]CheckResult, len(checkers))
	for _, c := range checkers {
		res := c.Check(ctx)
		results[c.Name()] = res
		switch res.Status {
		case StatusUnhealthy:
			status = StatusUnhealthy
		case StatusDegraded:
			if status == StatusHealthy {
				status = StatusDegraded
			}
		}
	}
	return status, results
}

// Health reports liveness. Component checks only run when verbose is set,
// so a failing dependency never makes the process look dead.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: m.clock.Now().UTC().Format(timeLayout),
	}
	if verbose {
		resp.Status, resp.Checks = m.run(ctx)
	}
	return resp
}

// Ready reports readiness. Any unhealthy check makes the process not ready;
// degraded checks do not.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	status, checks := m.run(ctx)
	return ReadinessResponse{
		Ready:     status != StatusUnhealthy,
		Status:    status,
		Timestamp: m.clock.Now().UTC().Format(timeLayout),
		Checks:    checks,
	}
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

// ServeHealth serves the liveness probe. It always answers 200.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	verbose := r.URL.Query().Get("verbose") == "true"
	resp := m.Health(r.Context(), verbose)
	writeJSON(w, http.StatusOK, resp, "health")
}

// ServeReady serves the readiness probe: 200 when ready, 503 otherwise.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	resp := m.Ready(r.Context())
	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp, "readiness")

	if !resp.Ready {
		logger := xglog.WithComponent("health")
		logger.Warn().
			Str("event", "readiness.not_ready").
			Str("status", string(resp.Status)).
			Msg("readiness check failed")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := xglog.WithComponent("health")
		logger.Error().Err(err).
			Str("event", kind+".encode_error").
			Msg("failed to encode response")
	}
}
