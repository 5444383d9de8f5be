// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package daemon owns process lifecycle for the agent and collector binaries:
// HTTP servers, shutdown hooks and wiring components from configuration.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ShutdownHook releases a resource during shutdown.
type ShutdownHook func(ctx context.Context) error

// Server is one HTTP listener owned by the manager.
type Server struct {
	Name    string
	Addr    string
	Handler http.Handler
}

// Config configures a Manager.
type Config struct {
	Servers           []Server
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
	Logger            zerolog.Logger
}

type namedHook struct {
	name string
	hook ShutdownHook
}

type runningServer struct {
	name string
	srv  *http.Server
	ln   net.Listener
}

// Manager runs HTTP servers until its context ends, then shuts them down and
// runs the registered hooks in reverse order.
type Manager struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	started  bool
	stopping bool
	servers  []runningServer
	hooks    []namedHook
	ready    chan struct{}
}

// NewManager creates a manager. Zero timeouts get defaults.
func NewManager(cfg Config) *Manager {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	return &Manager{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "manager").Logger(),
		ready:  make(chan struct{}),
	}
}

// RegisterShutdownHook registers a cleanup function to be called during shutdown.
// Hooks are executed in reverse registration order (LIFO).
func (m *Manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, hook: hook})
}

// Ready is closed once every server is listening.
func (m *Manager) Ready() <-chan struct{} { return m.ready }

// Addr returns the bound address of the named server, or "" before Ready.
func (m *Manager) Addr(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.servers {
		if s.name == name {
			return s.ln.Addr().String()
		}
	}
	return ""
}

// Run binds every server, serves until ctx is done or a server fails, then
// shuts down. A server failure is returned joined with any shutdown error.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	for _, s := range m.cfg.Servers {
		ln, err := net.Listen("tcp", s.Addr)
		if err != nil {
			m.mu.Lock()
			for _, rs := range m.servers {
				_ = rs.ln.Close()
			}
			m.servers = nil
			m.mu.Unlock()
			return errors.Join(fmt.Errorf("listen %s on %s: %w", s.Name, s.Addr, err), m.Shutdown(ctx))
		}
		srv := &http.Server{
			Handler:           s.Handler,
			ReadHeaderTimeout: m.cfg.ReadHeaderTimeout,
		}
		m.mu.Lock()
		m.servers = append(m.servers, runningServer{name: s.Name, srv: srv, ln: ln})
		m.mu.Unlock()
	}
	close(m.ready)

	g, gctx := errgroup.WithContext(ctx)
	for _, rs := range m.servers {
		g.Go(func() error {
			m.logger.Info().
				Str("event", "server.listening").
				Str("server", rs.name).
				Str("addr", rs.ln.Addr().String()).
				Msg("server listening")
			if err := rs.srv.Serve(rs.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				m.logger.Error().
					Err(err).
					Str("event", "server.failed").
					Str("server", rs.name).
					Msg("server failed")
				return fmt.Errorf("%s server: %w", rs.name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return m.Shutdown(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Shutdown stops the servers and runs the shutdown hooks within the
// configured timeout. Later calls are no-ops.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	servers := append([]runningServer(nil), m.servers...)
	hooks := append([]namedHook(nil), m.hooks...)
	m.mu.Unlock()

	m.logger.Info().Str("event", "manager.shutdown").Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, rs := range servers {
		if err := rs.srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", rs.name, err))
		}
	}

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		if err := h.hook(shutdownCtx); err != nil {
			m.logger.Error().
				Err(err).
				Str("hook", h.name).
				Dur("duration", time.Since(start)).
				Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", h.name, err))
			continue
		}
		m.logger.Debug().
			Str("hook", h.name).
			Dur("duration", time.Since(start)).
			Msg("shutdown hook completed")
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	m.logger.Info().Str("event", "manager.stopped").Msg("stopped cleanly")
	return nil
}
