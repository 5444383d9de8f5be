// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is shared by every environment variable the loader reads.
const EnvPrefix = "ANALYTICS_"

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath skips
// the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, def string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, def)
}

func (l *Loader) envBool(key string, def bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, def)
}

func (l *Loader) envInt(key string, def int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, def)
}

func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, def)
}

func (l *Loader) envFloat(key string, def float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, def)
}

func (l *Loader) envList(key string, def []string) []string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseList(key, def)
}

// Load resolves the configuration: defaults, then the strict YAML file, then
// environment overrides, then validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)
	l.warnUnknownEnv()

	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg. Unknown fields are rejected.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.Session.UserID = l.envString("ANALYTICS_USER_ID", cfg.Session.UserID)
	cfg.Session.VideoID = l.envString("ANALYTICS_VIDEO_ID", cfg.Session.VideoID)
	cfg.Session.Title = l.envString("ANALYTICS_TITLE", cfg.Session.Title)

	cfg.Device.OSVersion = l.envString("ANALYTICS_OS_VERSION", cfg.Device.OSVersion)
	cfg.Device.Radio = l.envString("ANALYTICS_RADIO", cfg.Device.Radio)
	cfg.Device.Transport = l.envString("ANALYTICS_NETWORK_TRANSPORT", cfg.Device.Transport)
	cfg.Device.DownstreamKbps = l.envInt("ANALYTICS_DOWNSTREAM_KBPS", cfg.Device.DownstreamKbps)

	cfg.Agent.SampleInterval = l.envDuration("ANALYTICS_SAMPLE_INTERVAL", cfg.Agent.SampleInterval)
	cfg.Agent.PublishInterval = l.envDuration("ANALYTICS_PUBLISH_INTERVAL", cfg.Agent.PublishInterval)
	cfg.Agent.PublishInitialDelay = l.envDuration("ANALYTICS_PUBLISH_INITIAL_DELAY", cfg.Agent.PublishInitialDelay)
	cfg.Agent.PublishTimeout = l.envDuration("ANALYTICS_PUBLISH_TIMEOUT", cfg.Agent.PublishTimeout)
	cfg.Agent.GeocodeTimeout = l.envDuration("ANALYTICS_GEOCODE_TIMEOUT", cfg.Agent.GeocodeTimeout)

	cfg.Publish.Retry.MaxRetries = l.envInt("ANALYTICS_RETRY_MAX", cfg.Publish.Retry.MaxRetries)
	cfg.Publish.Retry.BaseDelay = l.envDuration("ANALYTICS_RETRY_BASE_DELAY", cfg.Publish.Retry.BaseDelay)
	cfg.Publish.Retry.MaxDelay = l.envDuration("ANALYTICS_RETRY_MAX_DELAY", cfg.Publish.Retry.MaxDelay)
	cfg.Publish.Breaker.Enabled = l.envBool("ANALYTICS_BREAKER_ENABLED", cfg.Publish.Breaker.Enabled)
	cfg.Publish.Breaker.Threshold = l.envInt("ANALYTICS_BREAKER_THRESHOLD", cfg.Publish.Breaker.Threshold)
	cfg.Publish.Breaker.ResetTimeout = l.envDuration("ANALYTICS_BREAKER_RESET_TIMEOUT", cfg.Publish.Breaker.ResetTimeout)

	cfg.Transport.Kind = l.envString("ANALYTICS_TRANSPORT", cfg.Transport.Kind)
	cfg.Transport.HTTP.Endpoint = l.envString("ANALYTICS_ENDPOINT", cfg.Transport.HTTP.Endpoint)
	cfg.Transport.HTTP.Timeout = l.envDuration("ANALYTICS_HTTP_TIMEOUT", cfg.Transport.HTTP.Timeout)
	cfg.Transport.HTTP.Gzip = l.envBool("ANALYTICS_HTTP_GZIP", cfg.Transport.HTTP.Gzip)
	cfg.Transport.HTTP.UserAgent = l.envString("ANALYTICS_USER_AGENT", cfg.Transport.HTTP.UserAgent)
	cfg.Transport.Kafka.Brokers = l.envList("ANALYTICS_KAFKA_BROKERS", cfg.Transport.Kafka.Brokers)
	cfg.Transport.Kafka.Topic = l.envString("ANALYTICS_KAFKA_TOPIC", cfg.Transport.Kafka.Topic)
	cfg.Transport.Kafka.ClientID = l.envString("ANALYTICS_KAFKA_CLIENT_ID", cfg.Transport.Kafka.ClientID)
	cfg.Transport.File.Dir = l.envString("ANALYTICS_SPOOL_DIR", cfg.Transport.File.Dir)

	cfg.Geo.DBPath = l.envString("ANALYTICS_GEOIP_DB", cfg.Geo.DBPath)
	cfg.Geo.PublicIP = l.envString("ANALYTICS_PUBLIC_IP", cfg.Geo.PublicIP)
	cfg.Geo.Cache = l.envString("ANALYTICS_GEO_CACHE", cfg.Geo.Cache)
	cfg.Geo.CacheTTL = l.envDuration("ANALYTICS_GEO_CACHE_TTL", cfg.Geo.CacheTTL)
	cfg.Geo.Redis.Addr = l.envString("ANALYTICS_REDIS_ADDR", cfg.Geo.Redis.Addr)
	cfg.Geo.Redis.Password = l.envString("ANALYTICS_REDIS_PASSWORD", cfg.Geo.Redis.Password)
	cfg.Geo.Redis.DB = l.envInt("ANALYTICS_REDIS_DB", cfg.Geo.Redis.DB)

	cfg.Compat.FramerateFromBitrate = l.envBool("ANALYTICS_FRAMERATE_FROM_BITRATE", cfg.Compat.FramerateFromBitrate)

	cfg.Log.Level = l.envString("ANALYTICS_LOG_LEVEL", cfg.Log.Level)

	cfg.Telemetry.Enabled = l.envBool("ANALYTICS_OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("ANALYTICS_OTEL_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("ANALYTICS_OTEL_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.Environment = l.envString("ANALYTICS_ENVIRONMENT", cfg.Telemetry.Environment)
	cfg.Telemetry.SamplingRate = l.envFloat("ANALYTICS_OTEL_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	cfg.Metrics.ListenAddr = l.envString("ANALYTICS_METRICS_LISTEN", cfg.Metrics.ListenAddr)

	cfg.Collector.ListenAddr = l.envString("ANALYTICS_COLLECTOR_LISTEN", cfg.Collector.ListenAddr)
	cfg.Collector.RateLimit = l.envInt("ANALYTICS_COLLECTOR_RATE_LIMIT", cfg.Collector.RateLimit)
}

// UnknownEnvKeys lists set variables carrying EnvPrefix that the loader did
// not consume, usually typos.
func (l *Loader) UnknownEnvKeys() []string {
	var unknown []string
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if _, ok := l.ConsumedEnvKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func (l *Loader) warnUnknownEnv() {
	unknown := l.UnknownEnvKeys()
	if len(unknown) == 0 {
		return
	}
	logger := xglog.WithComponent("config")
	logger.Warn().
		Str("event", "config.unknown_env").
		Strs("keys", unknown).
		Msg("ignoring unrecognised environment variables")
}
