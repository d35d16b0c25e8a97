package config

import (
	"os"
	"strconv"
	"time"
)

// loadRedisFromEnv loads Redis configuration from environment variables
func loadRedisFromEnv(cfg *RedisConfig) {
	loadRedisStrings(cfg)
	loadRedisInts(cfg)
	loadRedisTimeouts(cfg)
}

func loadRedisStrings(cfg *RedisConfig) {
	if v := getEnvString("REDIS_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := getEnvString("REDIS_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := getEnvString("REDIS_STREAM"); v != "" {
		cfg.Stream = v
	}
	if v := getEnvString("REDIS_GROUP"); v != "" {
		cfg.Group = v
	}
	if v := getEnvString("REDIS_CONSUMER"); v != "" {
		cfg.Consumer = v
	}
	if v := getEnvString("REDIS_DEAD_LETTER_STREAM"); v != "" {
		cfg.DeadLetterStream = v
	}
}

func loadRedisInts(cfg *RedisConfig) {
	if v := getEnvInt("REDIS_DB"); v != 0 {
		cfg.DB = v
	}
	if v := getEnvInt("REDIS_BATCH_SIZE"); v != 0 {
		cfg.BatchSize = v
	}
	if v := getEnvString("REDIS_MAX_DELIVERIES"); v != "" {
		// 0 is meaningful here (disables the dead-letter divert)
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.MaxDeliveries = n
		}
	}
}

func loadRedisTimeouts(cfg *RedisConfig) {
	if v := getEnvDuration("REDIS_BLOCK_TIMEOUT"); v != 0 {
		cfg.BlockTimeout = v
	}
	if v := getEnvDuration("REDIS_CLAIM_IDLE"); v != 0 {
		cfg.ClaimIdle = v
	}
	if v := getEnvDuration("REDIS_CONSUMER_IDLE_TIMEOUT"); v != 0 {
		cfg.ConsumerIdleTimeout = v
	}
	if v := getEnvDuration("REDIS_CLEANUP_INTERVAL"); v != 0 {
		cfg.CleanupInterval = v
	}
	if v := getEnvDuration("REDIS_DIAL_TIMEOUT"); v != 0 {
		cfg.DialTimeout = v
	}
	if v := getEnvDuration("REDIS_READ_TIMEOUT"); v != 0 {
		cfg.ReadTimeout = v
	}
	if v := getEnvDuration("REDIS_WRITE_TIMEOUT"); v != 0 {
		cfg.WriteTimeout = v
	}
	if v := getEnvDuration("REDIS_PING_TIMEOUT"); v != 0 {
		cfg.PingTimeout = v
	}
}

// loadDatabaseFromEnv loads database configuration from environment variables
func loadDatabaseFromEnv(cfg *DatabaseConfig) {
	if v := getEnvString("DATABASE_URL"); v != "" {
		cfg.URL = v
	}
	if v := getEnvInt("DATABASE_MAX_OPEN_CONNS"); v != 0 {
		cfg.MaxOpenConns = v
	}
	if v := getEnvInt("DATABASE_MAX_IDLE_CONNS"); v != 0 {
		cfg.MaxIdleConns = v
	}
	if v := getEnvDuration("DATABASE_CONN_MAX_LIFETIME"); v != 0 {
		cfg.ConnMaxLifetime = v
	}
}

// loadAnalyzerFromEnv loads analyzer chain configuration from environment variables
func loadAnalyzerFromEnv(cfg *AnalyzerConfig) {
	if v := getEnvString("ANALYZER_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := getEnvString("ANALYZER_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := getEnvString("ANALYZER_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := getEnvDuration("ANALYZER_LOCAL_TIMEOUT"); v != 0 {
		cfg.LocalTimeout = v
	}
	if v := getEnvDuration("ANALYZER_REQUEST_TIMEOUT"); v != 0 {
		cfg.RequestTimeout = v
	}
	if v := getEnvInt("ANALYZER_MAX_ATTEMPTS"); v != 0 {
		cfg.MaxAttempts = v
	}
	if v := getEnvDuration("ANALYZER_RETRY_BASE_DELAY"); v != 0 {
		cfg.RetryBaseDelay = v
	}
	if v := getEnvDuration("ANALYZER_RETRY_MAX_DELAY"); v != 0 {
		cfg.RetryMaxDelay = v
	}
	if v := getEnvInt("ANALYZER_MAX_PROMPT_CHARS"); v != 0 {
		cfg.MaxPromptChars = v
	}
}

// loadAlertFromEnv loads alert monitor configuration from environment variables
func loadAlertFromEnv(cfg *AlertConfig) {
	if v := getEnvDuration("ALERT_INTERVAL"); v != 0 {
		cfg.Interval = v
	}
	if v := getEnvDuration("ALERT_WINDOW"); v != 0 {
		cfg.Window = v
	}
	if v := getEnvFloat("ALERT_NEGATIVE_RATIO_THRESHOLD"); v != 0 {
		cfg.NegativeRatioThreshold = v
	}
	if v := getEnvInt("ALERT_MIN_POSTS"); v != 0 {
		cfg.MinPosts = v
	}
}

// loadNotifyFromEnv loads notification sink configuration from environment variables
func loadNotifyFromEnv(cfg *NotifyConfig) {
	if v := getEnvString("NOTIFY_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := getEnvString("NOTIFY_CHANNEL_PREFIX"); v != "" {
		cfg.ChannelPrefix = v
	}
}

// loadMQTTFromEnv loads MQTT sink configuration from environment variables
func loadMQTTFromEnv(cfg *MQTTConfig) {
	loadMQTTStrings(cfg)
	loadMQTTInts(cfg)
	loadMQTTTimeouts(cfg)
	loadMQTTTLS(cfg)
}

func loadMQTTStrings(cfg *MQTTConfig) {
	if v := getEnvString("MQTT_BROKER"); v != "" {
		cfg.Broker = v
	}
	if v := getEnvString("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := getEnvString("MQTT_TOPIC_ROOT"); v != "" {
		cfg.TopicRoot = v
	}
}

func loadMQTTInts(cfg *MQTTConfig) {
	if v := getEnvInt("MQTT_QOS"); v != 0 && v >= 0 && v <= 2 {
		cfg.QoS = byte(v) // #nosec G115 - validated range 0-2
	}
	if v := getEnvInt("MQTT_DISCONNECT_TIMEOUT"); v != 0 {
		cfg.DisconnectTimeout = uint(v) // #nosec G115 - config values are non-negative
	}
}

func loadMQTTTimeouts(cfg *MQTTConfig) {
	if v := getEnvDuration("MQTT_CONNECT_TIMEOUT"); v != 0 {
		cfg.ConnectTimeout = v
	}
	if v := getEnvDuration("MQTT_PUBLISH_TIMEOUT"); v != 0 {
		cfg.PublishTimeout = v
	}
	if v := getEnvDuration("MQTT_MAX_RECONNECT_INTERVAL"); v != 0 {
		cfg.MaxReconnectInterval = v
	}
}

func loadMQTTTLS(cfg *MQTTConfig) {
	if v := getEnvBool("MQTT_TLS_ENABLED"); v {
		cfg.TLSEnabled = v
	}
	if v := getEnvString("MQTT_CA_CERT"); v != "" {
		cfg.CACert = v
	}
	if v := getEnvString("MQTT_CLIENT_CERT"); v != "" {
		cfg.ClientCert = v
	}
	if v := getEnvString("MQTT_CLIENT_KEY"); v != "" {
		cfg.ClientKey = v
	}
	if v := getEnvBool("MQTT_TLS_INSECURE_SKIP"); v {
		cfg.InsecureSkip = v
	}
}

// loadPipelineFromEnv loads pipeline configuration from environment variables
func loadPipelineFromEnv(cfg *PipelineConfig) {
	if v := getEnvInt("PIPELINE_ANALYSIS_WORKERS"); v != 0 {
		cfg.AnalysisWorkers = v
	}
	if v := getEnvDuration("PIPELINE_ERROR_BACKOFF"); v != 0 {
		cfg.ErrorBackoff = v
	}
	if v := getEnvDuration("PIPELINE_ACK_TIMEOUT"); v != 0 {
		cfg.AckTimeout = v
	}
	if v := getEnvDuration("PIPELINE_SHUTDOWN_TIMEOUT"); v != 0 {
		cfg.ShutdownTimeout = v
	}
}

// loadAPIFromEnv loads HTTP API configuration from environment variables
func loadAPIFromEnv(cfg *APIConfig) {
	// Explicit "false" disables the server; any other non-empty value enables it
	if v := getEnvString("API_ENABLED"); v != "" {
		cfg.Enabled = v == "true"
	}
	if v := getEnvString("API_ADDRESS"); v != "" {
		cfg.Address = v
	}
}

// loadIngestFromEnv loads ingester configuration from environment variables
func loadIngestFromEnv(cfg *IngestConfig) {
	if v := getEnvInt("INGEST_POSTS_PER_MINUTE"); v != 0 {
		cfg.PostsPerMinute = v
	}
	if v := getEnvString("INGEST_STREAM_MAXLEN"); v != "" {
		// 0 is meaningful here (unbounded stream)
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			cfg.StreamMaxLen = n
		}
	}
}

// Helper functions for reading environment variables

func getEnvString(key string) string {
	return os.Getenv(key)
}

func getEnvInt(key string) int {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return intValue
}

func getEnvFloat(key string) float64 {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return floatValue
}

func getEnvDuration(key string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return duration
}

func getEnvBool(key string) bool {
	value := os.Getenv(key)
	return value == "true"
}
