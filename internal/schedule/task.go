// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package schedule runs a function periodically on its own goroutine.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
	"github.com/rs/zerolog"
)

// ErrAlreadyStarted is returned by Start on a task that was started before.
var ErrAlreadyStarted = errors.New("task already started")

// Func is one firing of a task.
type Func func(ctx context.Context)

// Config describes a periodic task.
type Config struct {
	Name         string
	Interval     time.Duration
	InitialDelay time.Duration // zero means one Interval
	Clock        clockwork.Clock
	Logger       *zerolog.Logger
}

// Task fires Func every Interval after InitialDelay. Firings run one at a
// time on the task goroutine; ticks that arrive while a firing is still
// running are dropped rather than queued.
type Task struct {
	name         string
	interval     time.Duration
	initialDelay time.Duration
	clock        clockwork.Clock
	logger       zerolog.Logger
	fn           Func

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// New returns a stopped task.
func New(cfg Config, fn Func) (*Task, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("schedule %q: interval must be positive, got %s", cfg.Name, cfg.Interval)
	}
	if fn == nil {
		return nil, fmt.Errorf("schedule %q: nil func", cfg.Name)
	}
	t := &Task{
		name:         cfg.Name,
		interval:     cfg.Interval,
		initialDelay: cfg.InitialDelay,
		clock:        cfg.Clock,
		fn:           fn,
	}
	if t.initialDelay <= 0 {
		t.initialDelay = t.interval
	}
	if t.clock == nil {
		t.clock = clockwork.NewRealClock()
	}
	if cfg.Logger != nil {
		t.logger = *cfg.Logger
	} else {
		t.logger = xglog.WithComponent("schedule")
	}
	t.logger = t.logger.With().Str(xglog.FieldTask, cfg.Name).Logger()
	return t, nil
}

// Start launches the task goroutine. Firings receive ctx; cancelling it
// also ends the loop.
func (t *Task) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return ErrAlreadyStarted
	}
	t.started = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go t.loop(ctx, t.stop, t.done)

	t.logger.Debug().
		Str("event", "task.started").
		Dur("interval", t.interval).
		Dur("initial_delay", t.initialDelay).
		Msg("periodic task started")
	return nil
}

// Stop ends the loop and waits for an in-flight firing to return. No
// firing starts after Stop returns. Stop is idempotent and safe on a task
// that was never started.
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.started || t.stop == nil {
		t.mu.Unlock()
		return
	}
	stop, done := t.stop, t.done
	t.stop = nil
	t.mu.Unlock()

	close(stop)
	<-done
	t.logger.Debug().Str("event", "task.stopped").Msg("periodic task stopped")
}

func (t *Task) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	if t.initialDelay != t.interval {
		timer := t.clock.NewTimer(t.initialDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-stop:
			timer.Stop()
			return
		case <-timer.Chan():
		}
		if !t.fire(ctx, stop) {
			return
		}
	}

	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.Chan():
			if !t.fire(ctx, stop) {
				return
			}
		}
	}
}

// fire runs one firing unless the task was stopped while the tick was
// pending. It reports whether the loop should continue.
func (t *Task) fire(ctx context.Context, stop <-chan struct{}) bool {
	select {
	case <-stop:
		return false
	default:
	}
	t.run(ctx)
	return true
}

func (t *Task) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordTaskRun(t.name, "panic")
			t.logger.Error().
				Str("event", "task.panic").
				Interface("panic", r).
				Msg("periodic task panicked; continuing")
		}
	}()
	t.fn(ctx)
	metrics.RecordTaskRun(t.name, "ok")
}
