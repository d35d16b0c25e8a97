// Package config provides configuration loading and validation from
// environment variables and command line flags.
package config

import "time"

// Config holds the complete configuration.
type Config struct {
	Redis    RedisConfig
	Database DatabaseConfig
	Analyzer AnalyzerConfig
	Alert    AlertConfig
	Notify   NotifyConfig
	MQTT     MQTTConfig
	Pipeline PipelineConfig
	API      APIConfig
	Ingest   IngestConfig
}

// RedisConfig holds stream consumer-group configuration.
type RedisConfig struct {
	Address             string
	Password            string
	DB                  int
	Stream              string
	Group               string
	Consumer            string // empty: derived from host, pid and a random suffix
	BatchSize           int
	BlockTimeout        time.Duration
	ClaimIdle           time.Duration // min idle before a pending entry is reclaimed
	ConsumerIdleTimeout time.Duration
	CleanupInterval     time.Duration
	MaxDeliveries       int64  // deliveries before dead-letter divert; 0 disables
	DeadLetterStream    string // empty: derived as <stream>.dead
	DialTimeout         time.Duration
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	PingTimeout         time.Duration
}

// DatabaseConfig holds PostgreSQL connection pool configuration.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AnalyzerConfig holds the fallback chain tier settings. The external
// tier is inactive while APIKey is empty.
type AnalyzerConfig struct {
	LocalTimeout   time.Duration
	APIBaseURL     string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	MaxPromptChars int
}

// AlertConfig holds the sliding-window monitor settings.
type AlertConfig struct {
	Interval               time.Duration
	Window                 time.Duration
	NegativeRatioThreshold float64
	MinPosts               int
}

// Supported notification backends.
const (
	NotifyBackendRedis = "redis"
	NotifyBackendMQTT  = "mqtt"
	NotifyBackendNone  = "none"
)

// NotifyConfig selects the event sink backend.
type NotifyConfig struct {
	Backend       string // redis, mqtt or none
	ChannelPrefix string // redis pub/sub channel prefix
}

// MQTTConfig holds MQTT sink configuration.
type MQTTConfig struct {
	Broker               string
	ClientID             string
	TopicRoot            string
	QoS                  byte
	ConnectTimeout       time.Duration
	PublishTimeout       time.Duration
	MaxReconnectInterval time.Duration
	DisconnectTimeout    uint // Milliseconds for graceful disconnect
	// TLS Configuration
	TLSEnabled   bool
	CACert       string
	ClientCert   string
	ClientKey    string
	InsecureSkip bool
}

// PipelineConfig holds worker pool orchestration settings.
type PipelineConfig struct {
	AnalysisWorkers int           // bounded fan-out per batch, also caps external API concurrency
	ErrorBackoff    time.Duration // backoff after a failed loop iteration
	AckTimeout      time.Duration // timeout for acknowledge calls during drain
	ShutdownTimeout time.Duration
}

// APIConfig holds the HTTP read/health surface settings.
type APIConfig struct {
	Enabled bool
	Address string
}

// IngestConfig holds publisher settings for the ingester binary.
type IngestConfig struct {
	PostsPerMinute int
	StreamMaxLen   int64 // approximate XADD MAXLEN cap; 0 leaves the stream unbounded
}
