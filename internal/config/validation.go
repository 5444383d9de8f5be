// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"net"
	"strings"

	"github.com/mahfuzsust/AnalyticsSDK/internal/validate"
)

// Validate checks a resolved AppConfig and reports every invalid field.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("session.userId", cfg.Session.UserID)
	v.NotEmpty("session.videoId", cfg.Session.VideoID)

	if cfg.Device.Radio != "" {
		v.OneOf("device.radio", cfg.Device.Radio, []string{"nr", "lte", "hspa", "gprs"})
	}
	if cfg.Device.Transport != "" {
		v.OneOf("device.transport", cfg.Device.Transport, []string{"wifi", "cellular", "ethernet"})
	}
	v.NonNegative("device.downstreamKbps", cfg.Device.DownstreamKbps)

	v.PositiveDuration("agent.sampleInterval", cfg.Agent.SampleInterval)
	v.PositiveDuration("agent.publishInterval", cfg.Agent.PublishInterval)
	v.NonNegativeDuration("agent.publishInitialDelay", cfg.Agent.PublishInitialDelay)
	v.PositiveDuration("agent.publishTimeout", cfg.Agent.PublishTimeout)
	v.PositiveDuration("agent.geocodeTimeout", cfg.Agent.GeocodeTimeout)

	v.Range("publish.retry.maxRetries", cfg.Publish.Retry.MaxRetries, 0, 10)
	if cfg.Publish.Retry.MaxRetries > 0 {
		v.PositiveDuration("publish.retry.baseDelay", cfg.Publish.Retry.BaseDelay)
		if cfg.Publish.Retry.MaxDelay < cfg.Publish.Retry.BaseDelay {
			v.AddError("publish.retry.maxDelay", "must not be below baseDelay", cfg.Publish.Retry.MaxDelay)
		}
	}
	if cfg.Publish.Breaker.Enabled {
		v.Positive("publish.breaker.threshold", cfg.Publish.Breaker.Threshold)
		v.PositiveDuration("publish.breaker.resetTimeout", cfg.Publish.Breaker.ResetTimeout)
	}

	v.OneOf("transport.kind", cfg.Transport.Kind, []string{TransportHTTP, TransportKafka, TransportFile})
	switch cfg.Transport.Kind {
	case TransportHTTP:
		v.URL("transport.http.endpoint", cfg.Transport.HTTP.Endpoint, []string{"http", "https"})
		v.PositiveDuration("transport.http.timeout", cfg.Transport.HTTP.Timeout)
	case TransportKafka:
		if len(cfg.Transport.Kafka.Brokers) == 0 {
			v.AddError("transport.kafka.brokers", "at least one broker is required", cfg.Transport.Kafka.Brokers)
		}
		for _, b := range cfg.Transport.Kafka.Brokers {
			v.HostPort("transport.kafka.brokers", b)
		}
		v.NotEmpty("transport.kafka.topic", cfg.Transport.Kafka.Topic)
	case TransportFile:
		v.NotEmpty("transport.file.dir", cfg.Transport.File.Dir)
	}

	if cfg.Geo.DBPath != "" {
		v.File("geo.dbPath", cfg.Geo.DBPath)
		v.NotEmpty("geo.publicIp", cfg.Geo.PublicIP)
	}
	if ip := strings.TrimSpace(cfg.Geo.PublicIP); ip != "" && net.ParseIP(ip) == nil {
		v.AddError("geo.publicIp", "must be an IP address", cfg.Geo.PublicIP)
	}
	v.OneOf("geo.cache", cfg.Geo.Cache, []string{CacheMemory, CacheRedis, CacheNone})
	if cfg.Geo.Cache != CacheNone {
		v.PositiveDuration("geo.cacheTtl", cfg.Geo.CacheTTL)
	}
	if cfg.Geo.Cache == CacheRedis {
		v.HostPort("geo.redis.addr", cfg.Geo.Redis.Addr)
		v.Range("geo.redis.db", cfg.Geo.Redis.DB, 0, 15)
	}

	v.OneOf("log.level", strings.ToLower(cfg.Log.Level), []string{"trace", "debug", "info", "warn", "error"})

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	if cfg.Metrics.ListenAddr != "" {
		v.ListenAddr("metrics.listenAddr", cfg.Metrics.ListenAddr)
	}
	v.ListenAddr("collector.listenAddr", cfg.Collector.ListenAddr)
	v.NonNegative("collector.rateLimit", cfg.Collector.RateLimit)

	return v.Err()
}
