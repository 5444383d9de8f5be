// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the analytics agent and collector configuration.
//
// Values resolve in the order environment > YAML file > defaults. The file is
// parsed strictly: unknown keys are rejected.
package config

import "time"

// Transport kinds accepted in Transport.Kind.
const (
	TransportHTTP  = "http"
	TransportKafka = "kafka"
	TransportFile  = "file"
)

// Geocode cache backends accepted in Geo.Cache.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// AppConfig is the fully resolved configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	Session   SessionConfig   `yaml:"session"`
	Device    DeviceConfig    `yaml:"device"`
	Agent     AgentConfig     `yaml:"agent"`
	Publish   PublishConfig   `yaml:"publish"`
	Transport TransportConfig `yaml:"transport"`
	Geo       GeoConfig       `yaml:"geo"`
	Compat    CompatConfig    `yaml:"compat"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Collector CollectorConfig `yaml:"collector"`
}

// SessionConfig identifies the viewing session the agent reports on.
type SessionConfig struct {
	UserID  string `yaml:"userId"`
	VideoID string `yaml:"videoId"`
	Title   string `yaml:"title"`
}

// DeviceConfig describes the host reported in every record.
type DeviceConfig struct {
	OSVersion      string `yaml:"osVersion"`
	Radio          string `yaml:"radio"`     // nr, lte, hspa, gprs or empty
	Transport      string `yaml:"transport"` // wifi, cellular, ethernet or empty
	DownstreamKbps int    `yaml:"downstreamKbps"`
}

// AgentConfig holds the sampler and publisher cadence.
type AgentConfig struct {
	SampleInterval      time.Duration `yaml:"sampleInterval"`
	PublishInterval     time.Duration `yaml:"publishInterval"`
	PublishInitialDelay time.Duration `yaml:"publishInitialDelay"`
	PublishTimeout      time.Duration `yaml:"publishTimeout"`
	GeocodeTimeout      time.Duration `yaml:"geocodeTimeout"`
}

// PublishConfig tunes delivery of a batch.
type PublishConfig struct {
	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// RetryConfig enables bounded retries. MaxRetries 0 sends each batch once.
type RetryConfig struct {
	MaxRetries int           `yaml:"maxRetries"`
	BaseDelay  time.Duration `yaml:"baseDelay"`
	MaxDelay   time.Duration `yaml:"maxDelay"`
}

// BreakerConfig configures the transport circuit breaker.
type BreakerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Threshold    int           `yaml:"threshold"`
	ResetTimeout time.Duration `yaml:"resetTimeout"`
}

// TransportConfig selects where batches go.
type TransportConfig struct {
	Kind  string              `yaml:"kind"`
	HTTP  HTTPTransportConfig `yaml:"http"`
	Kafka KafkaConfig         `yaml:"kafka"`
	File  FileConfig          `yaml:"file"`
}

// HTTPTransportConfig configures the collector endpoint.
type HTTPTransportConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	Gzip      bool          `yaml:"gzip"`
	UserAgent string        `yaml:"userAgent"`
}

// KafkaConfig configures the Kafka producer.
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"clientId"`
}

// FileConfig configures the on-disk spool.
type FileConfig struct {
	Dir string `yaml:"dir"`
}

// GeoConfig configures location lookup and reverse geocoding.
type GeoConfig struct {
	// DBPath points at a MaxMind City database. Empty disables location.
	DBPath   string        `yaml:"dbPath"`
	PublicIP string        `yaml:"publicIp"`
	Cache    string        `yaml:"cache"`
	CacheTTL time.Duration `yaml:"cacheTtl"`
	Redis    RedisConfig   `yaml:"redis"`
}

// RedisConfig configures the shared geocode cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CompatConfig holds switches that keep records comparable with the mobile SDK.
type CompatConfig struct {
	FramerateFromBitrate bool `yaml:"framerateFromBitrate"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	Environment  string  `yaml:"environment"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// ListenAddr is empty to disable the endpoint.
	ListenAddr string `yaml:"listenAddr"`
}

// CollectorConfig configures the reference collector.
type CollectorConfig struct {
	ListenAddr string `yaml:"listenAddr"`
	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int `yaml:"rateLimit"`
}

// Defaults returns the configuration used when neither file nor environment
// sets a value.
func Defaults() AppConfig {
	return AppConfig{
		Session: SessionConfig{
			UserID:  "anonymous",
			VideoID: "demo",
			Title:   "Demo",
		},
		Device: DeviceConfig{
			Transport: "wifi",
		},
		Agent: AgentConfig{
			SampleInterval:      time.Second,
			PublishInterval:     10 * time.Second,
			PublishInitialDelay: 10 * time.Second,
			PublishTimeout:      5 * time.Second,
			GeocodeTimeout:      2 * time.Second,
		},
		Publish: PublishConfig{
			Retry: RetryConfig{
				BaseDelay: 200 * time.Millisecond,
				MaxDelay:  2 * time.Second,
			},
			Breaker: BreakerConfig{
				Threshold:    5,
				ResetTimeout: 30 * time.Second,
			},
		},
		Transport: TransportConfig{
			Kind: TransportHTTP,
			HTTP: HTTPTransportConfig{
				Endpoint:  "http://127.0.0.1:8088/events",
				Timeout:   5 * time.Second,
				UserAgent: "analytics-agent",
			},
			Kafka: KafkaConfig{
				Topic:    "playback-events",
				ClientID: "analytics-agent",
			},
			File: FileConfig{Dir: "spool"},
		},
		Geo: GeoConfig{
			Cache:    CacheMemory,
			CacheTTL: time.Hour,
			Redis:    RedisConfig{Addr: "127.0.0.1:6379"},
		},
		Compat: CompatConfig{FramerateFromBitrate: true},
		Log:    LogConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			Environment:  "production",
			SamplingRate: 1,
		},
		Metrics: MetricsConfig{ListenAddr: ":9464"},
		Collector: CollectorConfig{
			ListenAddr: ":8088",
			RateLimit:  600,
		},
	}
}
