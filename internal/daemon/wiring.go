// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mahfuzsust/AnalyticsSDK/internal/agent"
	"github.com/mahfuzsust/AnalyticsSDK/internal/cache"
	"github.com/mahfuzsust/AnalyticsSDK/internal/config"
	"github.com/mahfuzsust/AnalyticsSDK/internal/device"
	"github.com/mahfuzsust/AnalyticsSDK/internal/event"
	"github.com/mahfuzsust/AnalyticsSDK/internal/geo"
	"github.com/mahfuzsust/AnalyticsSDK/internal/health"
	"github.com/mahfuzsust/AnalyticsSDK/internal/player"
	"github.com/mahfuzsust/AnalyticsSDK/internal/publisher"
	"github.com/mahfuzsust/AnalyticsSDK/internal/resilience"
	"github.com/mahfuzsust/AnalyticsSDK/internal/schedule"
	"github.com/mahfuzsust/AnalyticsSDK/internal/telemetry"
	"github.com/mahfuzsust/AnalyticsSDK/internal/transport"
)

const geoCacheKeyPrefix = "analytics:"

// closer releases a resource opened during wiring.
type closer struct {
	name string
	fn   func(context.Context) error
}

type closers []closer

func (cs *closers) add(name string, fn func(context.Context) error) {
	*cs = append(*cs, closer{name: name, fn: fn})
}

// closeAll runs the closers in reverse order.
func (cs closers) closeAll(ctx context.Context) error {
	var errs []error
	for i := len(cs) - 1; i >= 0; i-- {
		if err := cs[i].fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cs[i].name, err))
		}
	}
	return errors.Join(errs...)
}

func (cs closers) register(m *Manager) {
	for _, c := range cs {
		m.RegisterShutdownHook(c.name, c.fn)
	}
}

// NewTransport builds the transport selected by cfg.Kind. The returned func
// releases its connections.
func NewTransport(cfg config.TransportConfig, clock clockwork.Clock) (transport.Transport, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Kind {
	case config.TransportHTTP:
		t, err := transport.NewHTTP(transport.HTTPConfig{
			Endpoint:  cfg.HTTP.Endpoint,
			Timeout:   cfg.HTTP.Timeout,
			Gzip:      cfg.HTTP.Gzip,
			UserAgent: cfg.HTTP.UserAgent,
		})
		return t, noop, err
	case config.TransportKafka:
		t, err := transport.NewKafka(transport.KafkaConfig{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	case config.TransportFile:
		t, err := transport.NewFile(cfg.File.Dir, clock)
		return t, noop, err
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Kind)
	}
}

// NewDevice maps the configured host description onto a static provider.
func NewDevice(cfg config.DeviceConfig) *device.Static {
	radios := map[string]device.Radio{
		"nr":   device.RadioNR,
		"lte":  device.RadioLTE,
		"hspa": device.RadioHSPA,
		"gprs": device.RadioGPRS,
	}
	bearers := map[string]device.Transport{
		"wifi":     device.TransportWiFi,
		"cellular": device.TransportCellular,
		"ethernet": device.TransportEthernet,
	}

	var transports []device.Transport
	if t, ok := bearers[strings.ToLower(cfg.Transport)]; ok {
		transports = append(transports, t)
	}

	osVersion := cfg.OSVersion
	if osVersion == "" {
		osVersion = runtime.GOOS
	}
	return device.NewStatic(osVersion, device.Network{
		Type:       device.NetworkClass(radios[strings.ToLower(cfg.Radio)]),
		SpeedMbps:  device.SpeedMbps(cfg.DownstreamKbps),
		Connection: device.ConnectionClass(transports...),
	})
}

// NewBreaker returns nil when the breaker is disabled.
func NewBreaker(cfg config.BreakerConfig, clock clockwork.Clock) *resilience.CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return resilience.NewCircuitBreaker("publisher", cfg.Threshold, cfg.ResetTimeout, resilience.WithClock(clock))
}

// geoStack is the location source and geocoder built from GeoConfig.
type geoStack struct {
	source   device.LocationSource
	geocoder geo.Geocoder
	redis    *cache.Redis
}

// newGeo opens the GeoIP database and wraps it with the configured cache.
// An empty DBPath disables location entirely.
func newGeo(ctx context.Context, cfg config.GeoConfig, clock clockwork.Clock, logger zerolog.Logger, cs *closers) (geoStack, error) {
	if cfg.DBPath == "" {
		return geoStack{}, nil
	}

	locator, err := geo.OpenIPLocator(cfg.DBPath, cfg.PublicIP)
	if err != nil {
		return geoStack{}, err
	}
	cs.add("geoip", func(context.Context) error { return locator.Close() })

	var (
		store cache.Cache
		rc    *cache.Redis
	)
	switch cfg.Cache {
	case config.CacheMemory:
		mem := cache.NewMemory(clock)
		sweeper, err := schedule.New(schedule.Config{
			Name:     "geocache_sweep",
			Interval: max(cfg.CacheTTL, time.Minute),
			Clock:    clock,
			Logger:   &logger,
		}, func(context.Context) {
			if n := mem.Sweep(); n > 0 {
				logger.Debug().Str("event", "geocache.swept").Int("entries", n).Msg("expired geocode entries removed")
			}
		})
		if err != nil {
			return geoStack{}, err
		}
		if err := sweeper.Start(ctx); err != nil {
			return geoStack{}, err
		}
		cs.add("geocache_sweep", func(context.Context) error { sweeper.Stop(); return nil })
		store = mem
	case config.CacheRedis:
		r, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: geoCacheKeyPrefix,
		}, logger)
		if err != nil {
			return geoStack{}, err
		}
		cs.add("redis", func(context.Context) error { return r.Close() })
		store, rc = r, r
	}

	var geocoder geo.Geocoder = locator
	if store != nil {
		geocoder = geo.NewCached(locator, store, cfg.CacheTTL)
	}
	return geoStack{source: locator, geocoder: geocoder, redis: rc}, nil
}

// AgentDeps are the process-level collaborators of an agent.
type AgentDeps struct {
	Player player.Source
	Clock  clockwork.Clock
	Logger zerolog.Logger
	// Health, when set, receives checks for the publisher and the
	// dependencies opened here.
	Health *health.Manager
}

// WireAgent builds an agent from cfg. Its shutdown hooks are registered on m
// so the agent's final flush runs before the transport and geo resources
// close. The caller starts the agent.
func WireAgent(ctx context.Context, cfg config.AppConfig, deps AgentDeps, m *Manager) (*agent.Agent, error) {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	var cs closers
	fail := func(err error) (*agent.Agent, error) {
		return nil, errors.Join(err, cs.closeAll(context.WithoutCancel(ctx)))
	}

	tr, closeTransport, err := NewTransport(cfg.Transport, clock)
	if err != nil {
		return fail(fmt.Errorf("transport: %w", err))
	}
	cs.add("transport", func(context.Context) error { return closeTransport() })

	gs, err := newGeo(ctx, cfg.Geo, clock, deps.Logger, &cs)
	if err != nil {
		return fail(fmt.Errorf("geo: %w", err))
	}

	breaker := NewBreaker(cfg.Publish.Breaker, clock)

	dev := NewDevice(cfg.Device)
	if gs.source != nil {
		dev.SetLocationSource(gs.source)
	}

	a, err := agent.New(agent.Options{
		Identity: event.Identity{
			UserID:  cfg.Session.UserID,
			VideoID: cfg.Session.VideoID,
			Title:   cfg.Session.Title,
		},
		Player:              deps.Player,
		Device:              dev,
		Geocoder:            gs.geocoder,
		Transport:           tr,
		TransportKind:       cfg.Transport.Kind,
		SampleInterval:      cfg.Agent.SampleInterval,
		PublishInterval:     cfg.Agent.PublishInterval,
		PublishInitialDelay: cfg.Agent.PublishInitialDelay,
		PublishTimeout:      cfg.Agent.PublishTimeout,
		GeocodeTimeout:      cfg.Agent.GeocodeTimeout,
		Retry: publisher.RetryConfig{
			MaxRetries: cfg.Publish.Retry.MaxRetries,
			BaseDelay:  cfg.Publish.Retry.BaseDelay,
			MaxDelay:   cfg.Publish.Retry.MaxDelay,
		},
		Breaker:              breaker,
		FramerateFromBitrate: cfg.Compat.FramerateFromBitrate,
		Clock:                clock,
		Tracer:               telemetry.Tracer("analytics-agent"),
		Logger:               &deps.Logger,
	})
	if err != nil {
		return fail(err)
	}
	cs.add("agent", a.OnClose)

	if hm := deps.Health; hm != nil {
		hm.RegisterChecker(health.NewPublishChecker(a.LastPublish, clock))
		if breaker != nil {
			hm.RegisterChecker(health.BreakerChecker("publish_breaker", breaker))
		}
		if cfg.Geo.DBPath != "" {
			hm.RegisterChecker(health.NewFileChecker("geoip_db", cfg.Geo.DBPath))
		}
		if gs.redis != nil {
			hm.RegisterChecker(health.PingChecker("geocache_redis", health.StatusDegraded, time.Second, gs.redis.HealthCheck))
		}
	}

	cs.register(m)
	return a, nil
}

// InitTelemetry installs the tracer provider described by cfg and registers
// its shutdown on m.
func InitTelemetry(ctx context.Context, cfg config.TelemetryConfig, service, version string, m *Manager) error {
	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Enabled,
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		ExporterType:   cfg.Exporter,
		Endpoint:       cfg.Endpoint,
		SamplingRate:   cfg.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("telemetry init failed: %w", err)
	}
	m.RegisterShutdownHook("telemetry", provider.Shutdown)
	return nil
}
