// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package agent observes one playback session: it samples player and device
// state every second, records track changes and player errors, and
// publishes the buffered records periodically and at lifecycle boundaries.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mahfuzsust/AnalyticsSDK/internal/buffer"
	"github.com/mahfuzsust/AnalyticsSDK/internal/device"
	"github.com/mahfuzsust/AnalyticsSDK/internal/event"
	"github.com/mahfuzsust/AnalyticsSDK/internal/geo"
	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
	"github.com/mahfuzsust/AnalyticsSDK/internal/player"
	"github.com/mahfuzsust/AnalyticsSDK/internal/publisher"
	"github.com/mahfuzsust/AnalyticsSDK/internal/resilience"
	"github.com/mahfuzsust/AnalyticsSDK/internal/schedule"
	"github.com/mahfuzsust/AnalyticsSDK/internal/snapshot"
	"github.com/mahfuzsust/AnalyticsSDK/internal/transport"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSampleInterval is the sampling cadence.
const DefaultSampleInterval = time.Second

var (
	// ErrStarted is returned by Start on an agent that is already running.
	ErrStarted = errors.New("agent already started")
	// ErrClosed is returned by Start after OnClose.
	ErrClosed = errors.New("agent closed")
)

// Options configures an Agent. Player, Device and Transport are required.
type Options struct {
	Identity  event.Identity
	Player    player.Source
	Device    device.ContextProvider
	Geocoder  geo.Geocoder
	Transport transport.Transport

	TransportKind       string
	SampleInterval      time.Duration
	PublishInterval     time.Duration
	PublishInitialDelay time.Duration
	PublishTimeout      time.Duration
	GeocodeTimeout      time.Duration
	Retry               publisher.RetryConfig
	Breaker             *resilience.CircuitBreaker

	// FramerateFromBitrate reproduces the mobile SDK's framerate field,
	// which carries the track bitrate.
	FramerateFromBitrate bool

	Clock  clockwork.Clock
	Tracer trace.Tracer
	Logger *zerolog.Logger
}

// Agent owns the buffer, the sampler and the publisher of one session. It
// implements player.Listener.
type Agent struct {
	identity  event.Identity
	player    player.Source
	buf       *buffer.Buffer
	builder   *snapshot.Builder
	sampler   *schedule.Task
	publisher *publisher.Publisher
	logger    zerolog.Logger

	// mu is held for reading by listener callbacks and for writing when
	// the agent starts or closes, so no callback straddles OnClose.
	mu      sync.RWMutex
	started bool
	closed  bool
	bgCtx   context.Context
	flushes sync.WaitGroup
}

// New wires an agent from opts. Nothing runs until Start.
func New(opts Options) (*Agent, error) {
	if opts.Player == nil {
		return nil, errors.New("agent: player is required")
	}
	if opts.Device == nil {
		return nil, errors.New("agent: device context provider is required")
	}

	var logger zerolog.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = xglog.WithComponent("agent")
	}
	logger = logger.With().
		Str(xglog.FieldUserID, opts.Identity.UserID).
		Str(xglog.FieldVideoID, opts.Identity.VideoID).
		Logger()

	a := &Agent{
		identity: opts.Identity,
		player:   opts.Player,
		buf:      buffer.New(),
		logger:   logger,
		bgCtx:    context.Background(),
	}

	a.builder = snapshot.NewBuilder(snapshot.Options{
		Identity:             opts.Identity,
		Player:               opts.Player,
		Device:               opts.Device,
		Geocoder:             opts.Geocoder,
		Clock:                opts.Clock,
		GeocodeTimeout:       opts.GeocodeTimeout,
		FramerateFromBitrate: opts.FramerateFromBitrate,
		Logger:               &logger,
	})

	pub, err := publisher.New(publisher.Options{
		Buffer:        a.buf,
		Transport:     opts.Transport,
		TransportKind: opts.TransportKind,
		Interval:      opts.PublishInterval,
		InitialDelay:  opts.PublishInitialDelay,
		Timeout:       opts.PublishTimeout,
		Retry:         opts.Retry,
		Breaker:       opts.Breaker,
		Clock:         opts.Clock,
		Tracer:        opts.Tracer,
		Logger:        &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	a.publisher = pub

	interval := opts.SampleInterval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	a.sampler, err = schedule.New(schedule.Config{
		Name:     "sampler",
		Interval: interval,
		Clock:    opts.Clock,
		Logger:   &logger,
	}, a.sample)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	return a, nil
}

// Start registers the player listener and starts sampling and publishing.
// Firings and callback-triggered flushes run with ctx's values but are not
// cancelled by it; the session ends with OnClose.
func (a *Agent) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case a.closed:
		return ErrClosed
	case a.started:
		return ErrStarted
	}

	a.bgCtx = context.WithoutCancel(ctx)
	if err := a.sampler.Start(a.bgCtx); err != nil {
		return err
	}
	if err := a.publisher.Start(a.bgCtx); err != nil {
		a.sampler.Stop()
		return err
	}
	a.player.AddListener(a)
	a.started = true

	a.logger.Info().Str("event", "agent.started").Msg("playback analytics started")
	return nil
}

// Pending returns the number of buffered records not yet published.
func (a *Agent) Pending() int {
	return a.buf.Len()
}

// LastPublish reports when a batch was last delivered and the error of the
// latest flush.
func (a *Agent) LastPublish() (time.Time, error) {
	return a.publisher.Status()
}

// OnPause publishes everything buffered so far.
func (a *Agent) OnPause(ctx context.Context) error {
	return a.publisher.Flush(ctx, publisher.TriggerPause)
}

// OnVideoEnd publishes everything buffered so far.
func (a *Agent) OnVideoEnd(ctx context.Context) error {
	return a.publisher.Flush(ctx, publisher.TriggerVideoEnd)
}

// OnClose ends the session: it unregisters from the player, stops both
// timers (waiting for in-flight firings), waits for callback-triggered
// flushes and publishes whatever is left. Later calls do nothing.
func (a *Agent) OnClose(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	started := a.started
	a.mu.Unlock()

	if started {
		a.player.RemoveListener(a)
	}
	a.sampler.Stop()
	a.publisher.Stop()
	a.flushes.Wait()

	err := a.publisher.Flush(ctx, publisher.TriggerClose)
	a.logger.Info().Str("event", "agent.closed").Msg("playback analytics closed")
	return err
}

// sample is the sampler firing.
func (a *Agent) sample(ctx context.Context) {
	a.buf.Append(a.builder.Build(ctx))
	metrics.RecordEventsAppended(metrics.SourceSampler, 1)
}

// enter guards a listener callback. On success the caller holds mu for
// reading and must release it; after OnClose it reports false.
func (a *Agent) enter() (context.Context, bool) {
	a.mu.RLock()
	if a.closed {
		a.mu.RUnlock()
		return nil, false
	}
	return a.bgCtx, true
}

// flushAsync publishes on an agent-owned goroutine so the player's
// callback never blocks on the network. Caller holds mu for reading.
func (a *Agent) flushAsync(ctx context.Context, trigger publisher.Trigger) {
	a.flushes.Add(1)
	go func() {
		defer a.flushes.Done()
		_ = a.publisher.Flush(ctx, trigger)
	}()
}
