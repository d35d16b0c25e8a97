package config

import (
	"flag"
)

// Command line flags (have precedence over environment variables).
// Secrets such as the Redis password and the analyzer API key are
// environment-only.
var (
	// Redis flags
	flagRedisAddress       = flag.String("redis-address", "", "Redis address")
	flagRedisStream        = flag.String("redis-stream", "", "Redis stream name")
	flagRedisGroup         = flag.String("redis-group", "", "Redis consumer group name")
	flagRedisConsumer      = flag.String("redis-consumer", "", "Redis consumer name (derived when empty)")
	flagRedisBatchSize     = flag.Int("redis-batch-size", 0, "Redis batch size")
	flagRedisBlockTimeout  = flag.Duration("redis-block-timeout", 0, "Redis block timeout")
	flagRedisClaimIdle     = flag.Duration("redis-claim-idle", 0, "Redis claim idle time")
	flagRedisMaxDeliveries = flag.Int64("redis-max-deliveries", -1, "Deliveries before dead-lettering (0 disables)")

	// Database flags
	flagDatabaseURL = flag.String("database-url", "", "PostgreSQL connection URL")

	// Analyzer flags
	flagAnalyzerBaseURL        = flag.String("analyzer-base-url", "", "OpenAI-compatible API base URL")
	flagAnalyzerModel          = flag.String("analyzer-model", "", "Model name for the API analyzer")
	flagAnalyzerLocalTimeout   = flag.Duration("analyzer-local-timeout", 0, "Local analyzer timeout")
	flagAnalyzerRequestTimeout = flag.Duration("analyzer-request-timeout", 0, "API analyzer request timeout")

	// Alert flags
	flagAlertInterval  = flag.Duration("alert-interval", 0, "Interval between alert evaluations")
	flagAlertWindow    = flag.Duration("alert-window", 0, "Look-back window for alert evaluation")
	flagAlertThreshold = flag.Float64("alert-threshold", 0, "Negative ratio threshold")
	flagAlertMinPosts  = flag.Int("alert-min-posts", 0, "Minimum analyzed posts before alerting")

	// Notify flags
	flagNotifyBackend       = flag.String("notify-backend", "", "Notification backend (redis, mqtt or none)")
	flagNotifyChannelPrefix = flag.String("notify-channel-prefix", "", "Channel prefix for notifications")

	// MQTT flags
	flagMQTTBroker          = flag.String("mqtt-broker", "", "MQTT broker URL")
	flagMQTTClientID        = flag.String("mqtt-client-id", "", "MQTT client ID")
	flagMQTTTopicRoot       = flag.String("mqtt-topic-root", "", "MQTT root topic")
	flagMQTTQoS             = flag.Int("mqtt-qos", -1, "MQTT QoS (0, 1, or 2)")
	flagMQTTTLSEnabled      = flag.Bool("mqtt-tls-enabled", false, "Enable MQTT TLS")
	flagMQTTTLSInsecureSkip = flag.Bool("mqtt-tls-insecure-skip", false, "Skip MQTT TLS verification")

	// Pipeline flags
	flagAnalysisWorkers         = flag.Int("analysis-workers", 0, "Number of concurrent analysis workers")
	flagPipelineErrorBackoff    = flag.Duration("pipeline-error-backoff", 0, "Pipeline error backoff")
	flagPipelineShutdownTimeout = flag.Duration("pipeline-shutdown-timeout", 0, "Pipeline shutdown timeout")

	// API flags
	flagAPIEnabled = flag.Bool("api-enabled", true, "Enable the HTTP API server")
	flagAPIAddress = flag.String("api-address", "", "HTTP API listen address")

	// Ingest flags
	flagPostsPerMinute = flag.Int("posts-per-minute", 0, "Posts generated per minute")
	flagStreamMaxLen   = flag.Int64("stream-maxlen", -1, "Approximate stream length cap (0 disables)")
)

// applyRedisFlags applies command line flags to Redis configuration
func applyRedisFlags(cfg *RedisConfig) {
	applyRedisFlagStrings(cfg)
	applyRedisFlagInts(cfg)
	applyRedisFlagTimeouts(cfg)
}

func applyRedisFlagStrings(cfg *RedisConfig) {
	if *flagRedisAddress != "" {
		cfg.Address = *flagRedisAddress
	}
	if *flagRedisStream != "" {
		cfg.Stream = *flagRedisStream
	}
	if *flagRedisGroup != "" {
		cfg.Group = *flagRedisGroup
	}
	if *flagRedisConsumer != "" {
		cfg.Consumer = *flagRedisConsumer
	}
}

func applyRedisFlagInts(cfg *RedisConfig) {
	if *flagRedisBatchSize != 0 {
		cfg.BatchSize = *flagRedisBatchSize
	}
	if *flagRedisMaxDeliveries >= 0 {
		cfg.MaxDeliveries = *flagRedisMaxDeliveries
	}
}

func applyRedisFlagTimeouts(cfg *RedisConfig) {
	if *flagRedisBlockTimeout != 0 {
		cfg.BlockTimeout = *flagRedisBlockTimeout
	}
	if *flagRedisClaimIdle != 0 {
		cfg.ClaimIdle = *flagRedisClaimIdle
	}
}

// applyDatabaseFlags applies command line flags to database configuration
func applyDatabaseFlags(cfg *DatabaseConfig) {
	if *flagDatabaseURL != "" {
		cfg.URL = *flagDatabaseURL
	}
}

// applyAnalyzerFlags applies command line flags to analyzer configuration
func applyAnalyzerFlags(cfg *AnalyzerConfig) {
	if *flagAnalyzerBaseURL != "" {
		cfg.APIBaseURL = *flagAnalyzerBaseURL
	}
	if *flagAnalyzerModel != "" {
		cfg.Model = *flagAnalyzerModel
	}
	if *flagAnalyzerLocalTimeout != 0 {
		cfg.LocalTimeout = *flagAnalyzerLocalTimeout
	}
	if *flagAnalyzerRequestTimeout != 0 {
		cfg.RequestTimeout = *flagAnalyzerRequestTimeout
	}
}

// applyAlertFlags applies command line flags to alert configuration
func applyAlertFlags(cfg *AlertConfig) {
	if *flagAlertInterval != 0 {
		cfg.Interval = *flagAlertInterval
	}
	if *flagAlertWindow != 0 {
		cfg.Window = *flagAlertWindow
	}
	if *flagAlertThreshold != 0 {
		cfg.NegativeRatioThreshold = *flagAlertThreshold
	}
	if *flagAlertMinPosts != 0 {
		cfg.MinPosts = *flagAlertMinPosts
	}
}

// applyNotifyFlags applies command line flags to notification configuration
func applyNotifyFlags(cfg *NotifyConfig) {
	if *flagNotifyBackend != "" {
		cfg.Backend = *flagNotifyBackend
	}
	if *flagNotifyChannelPrefix != "" {
		cfg.ChannelPrefix = *flagNotifyChannelPrefix
	}
}

// applyMQTTFlags applies command line flags to MQTT configuration
func applyMQTTFlags(cfg *MQTTConfig) {
	applyMQTTFlagStrings(cfg)
	applyMQTTFlagInts(cfg)
	applyMQTTFlagBools(cfg)
}

func applyMQTTFlagStrings(cfg *MQTTConfig) {
	if *flagMQTTBroker != "" {
		cfg.Broker = *flagMQTTBroker
	}
	if *flagMQTTClientID != "" {
		cfg.ClientID = *flagMQTTClientID
	}
	if *flagMQTTTopicRoot != "" {
		cfg.TopicRoot = *flagMQTTTopicRoot
	}
}

func applyMQTTFlagInts(cfg *MQTTConfig) {
	if *flagMQTTQoS != -1 && *flagMQTTQoS >= 0 && *flagMQTTQoS <= 2 {
		cfg.QoS = byte(*flagMQTTQoS) // #nosec G115 - validated range 0-2
	}
}

func applyMQTTFlagBools(cfg *MQTTConfig) {
	// Handle bool flags - check if explicitly set
	if isFlagSet("mqtt-tls-enabled") {
		cfg.TLSEnabled = *flagMQTTTLSEnabled
	}
	if isFlagSet("mqtt-tls-insecure-skip") {
		cfg.InsecureSkip = *flagMQTTTLSInsecureSkip
	}
}

// applyPipelineFlags applies command line flags to pipeline configuration
func applyPipelineFlags(cfg *PipelineConfig) {
	if *flagAnalysisWorkers != 0 {
		cfg.AnalysisWorkers = *flagAnalysisWorkers
	}
	if *flagPipelineErrorBackoff != 0 {
		cfg.ErrorBackoff = *flagPipelineErrorBackoff
	}
	if *flagPipelineShutdownTimeout != 0 {
		cfg.ShutdownTimeout = *flagPipelineShutdownTimeout
	}
}

// applyAPIFlags applies command line flags to HTTP API configuration
func applyAPIFlags(cfg *APIConfig) {
	if isFlagSet("api-enabled") {
		cfg.Enabled = *flagAPIEnabled
	}
	if *flagAPIAddress != "" {
		cfg.Address = *flagAPIAddress
	}
}

// applyIngestFlags applies command line flags to ingester configuration
func applyIngestFlags(cfg *IngestConfig) {
	if *flagPostsPerMinute != 0 {
		cfg.PostsPerMinute = *flagPostsPerMinute
	}
	if *flagStreamMaxLen >= 0 {
		cfg.StreamMaxLen = *flagStreamMaxLen
	}
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
