package config

import (
	"testing"
	"time"
)

func TestLoadRedisFromEnv(t *testing.T) {
	// Start with defaults
	cfg := defaultRedisConfig()

	// Set environment variables
	t.Setenv("REDIS_ADDRESS", "redis-test:6379")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_STREAM", "test-stream")
	t.Setenv("REDIS_GROUP", "test-group")
	t.Setenv("REDIS_CONSUMER", "test-consumer")
	t.Setenv("REDIS_BATCH_SIZE", "100")
	t.Setenv("REDIS_BLOCK_TIMEOUT", "3s")
	t.Setenv("REDIS_CLAIM_IDLE", "20s")
	t.Setenv("REDIS_CONSUMER_IDLE_TIMEOUT", "3m")
	t.Setenv("REDIS_CLEANUP_INTERVAL", "2m")
	t.Setenv("REDIS_MAX_DELIVERIES", "7")
	t.Setenv("REDIS_DEAD_LETTER_STREAM", "test-stream.failed")
	t.Setenv("REDIS_DIAL_TIMEOUT", "5s")
	t.Setenv("REDIS_READ_TIMEOUT", "7s")
	t.Setenv("REDIS_WRITE_TIMEOUT", "3s")
	t.Setenv("REDIS_PING_TIMEOUT", "2s")

	// Load from environment
	loadRedisFromEnv(&cfg)

	// Verify
	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Address", cfg.Address, "redis-test:6379"},
		{"Password", cfg.Password, "secret"},
		{"DB", cfg.DB, 2},
		{"Stream", cfg.Stream, "test-stream"},
		{"Group", cfg.Group, "test-group"},
		{"Consumer", cfg.Consumer, "test-consumer"},
		{"BatchSize", cfg.BatchSize, 100},
		{"BlockTimeout", cfg.BlockTimeout, 3 * time.Second},
		{"ClaimIdle", cfg.ClaimIdle, 20 * time.Second},
		{"ConsumerIdleTimeout", cfg.ConsumerIdleTimeout, 3 * time.Minute},
		{"CleanupInterval", cfg.CleanupInterval, 2 * time.Minute},
		{"MaxDeliveries", cfg.MaxDeliveries, int64(7)},
		{"DeadLetterStream", cfg.DeadLetterStream, "test-stream.failed"},
		{"DialTimeout", cfg.DialTimeout, 5 * time.Second},
		{"ReadTimeout", cfg.ReadTimeout, 7 * time.Second},
		{"WriteTimeout", cfg.WriteTimeout, 3 * time.Second},
		{"PingTimeout", cfg.PingTimeout, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadRedisFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadRedisFromEnv_ZeroMaxDeliveries(t *testing.T) {
	cfg := defaultRedisConfig()

	// Zero disables dead-lettering and must not be treated as "unset"
	t.Setenv("REDIS_MAX_DELIVERIES", "0")

	loadRedisFromEnv(&cfg)

	if cfg.MaxDeliveries != 0 {
		t.Errorf("MaxDeliveries = %d; want 0", cfg.MaxDeliveries)
	}
}

func TestLoadDatabaseFromEnv(t *testing.T) {
	cfg := defaultDatabaseConfig()

	t.Setenv("DATABASE_URL", "postgres://u:p@db-test:5432/sentiment?sslmode=disable")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "30")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "15")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "10m")

	loadDatabaseFromEnv(&cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"URL", cfg.URL, "postgres://u:p@db-test:5432/sentiment?sslmode=disable"},
		{"MaxOpenConns", cfg.MaxOpenConns, 30},
		{"MaxIdleConns", cfg.MaxIdleConns, 15},
		{"ConnMaxLifetime", cfg.ConnMaxLifetime, 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadDatabaseFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadAnalyzerFromEnv(t *testing.T) {
	cfg := defaultAnalyzerConfig()

	t.Setenv("ANALYZER_LOCAL_TIMEOUT", "1s")
	t.Setenv("ANALYZER_API_BASE_URL", "https://api.example.com/v1")
	t.Setenv("ANALYZER_API_KEY", "gsk-env")
	t.Setenv("ANALYZER_MODEL", "env-model")
	t.Setenv("ANALYZER_REQUEST_TIMEOUT", "15s")
	t.Setenv("ANALYZER_MAX_ATTEMPTS", "5")
	t.Setenv("ANALYZER_RETRY_BASE_DELAY", "500ms")
	t.Setenv("ANALYZER_RETRY_MAX_DELAY", "8s")
	t.Setenv("ANALYZER_MAX_PROMPT_CHARS", "1000")

	loadAnalyzerFromEnv(&cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"LocalTimeout", cfg.LocalTimeout, 1 * time.Second},
		{"APIBaseURL", cfg.APIBaseURL, "https://api.example.com/v1"},
		{"APIKey", cfg.APIKey, "gsk-env"},
		{"Model", cfg.Model, "env-model"},
		{"RequestTimeout", cfg.RequestTimeout, 15 * time.Second},
		{"MaxAttempts", cfg.MaxAttempts, 5},
		{"RetryBaseDelay", cfg.RetryBaseDelay, 500 * time.Millisecond},
		{"RetryMaxDelay", cfg.RetryMaxDelay, 8 * time.Second},
		{"MaxPromptChars", cfg.MaxPromptChars, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadAnalyzerFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadAlertFromEnv(t *testing.T) {
	cfg := defaultAlertConfig()

	t.Setenv("ALERT_INTERVAL", "2m")
	t.Setenv("ALERT_WINDOW", "15m")
	t.Setenv("ALERT_NEGATIVE_RATIO_THRESHOLD", "0.65")
	t.Setenv("ALERT_MIN_POSTS", "10")

	loadAlertFromEnv(&cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Interval", cfg.Interval, 2 * time.Minute},
		{"Window", cfg.Window, 15 * time.Minute},
		{"NegativeRatioThreshold", cfg.NegativeRatioThreshold, 0.65},
		{"MinPosts", cfg.MinPosts, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadAlertFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadNotifyFromEnv(t *testing.T) {
	cfg := defaultNotifyConfig()

	t.Setenv("NOTIFY_BACKEND", "mqtt")
	t.Setenv("NOTIFY_CHANNEL_PREFIX", "custom.events")

	loadNotifyFromEnv(&cfg)

	if cfg.Backend != "mqtt" {
		t.Errorf("Backend = %s; want mqtt", cfg.Backend)
	}
	if cfg.ChannelPrefix != "custom.events" {
		t.Errorf("ChannelPrefix = %s; want custom.events", cfg.ChannelPrefix)
	}
}

func TestLoadMQTTFromEnv(t *testing.T) {
	// Start with defaults
	cfg := defaultMQTTConfig()

	// Set environment variables
	t.Setenv("MQTT_BROKER", "tcp://mqtt-test:1883")
	t.Setenv("MQTT_CLIENT_ID", "test-client")
	t.Setenv("MQTT_TOPIC_ROOT", "test/events")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("MQTT_CONNECT_TIMEOUT", "5s")
	t.Setenv("MQTT_PUBLISH_TIMEOUT", "20s")
	t.Setenv("MQTT_MAX_RECONNECT_INTERVAL", "5s")
	t.Setenv("MQTT_DISCONNECT_TIMEOUT", "500")
	t.Setenv("MQTT_CA_CERT", "/path/ca.crt")
	t.Setenv("MQTT_CLIENT_CERT", "/path/client.crt")
	t.Setenv("MQTT_CLIENT_KEY", "/path/client.key")
	t.Setenv("MQTT_TLS_ENABLED", "true")
	t.Setenv("MQTT_TLS_INSECURE_SKIP", "true")

	// Load from environment
	loadMQTTFromEnv(&cfg)

	// Verify
	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Broker", cfg.Broker, "tcp://mqtt-test:1883"},
		{"ClientID", cfg.ClientID, "test-client"},
		{"TopicRoot", cfg.TopicRoot, "test/events"},
		{"QoS", cfg.QoS, byte(2)},
		{"ConnectTimeout", cfg.ConnectTimeout, 5 * time.Second},
		{"PublishTimeout", cfg.PublishTimeout, 20 * time.Second},
		{"MaxReconnectInterval", cfg.MaxReconnectInterval, 5 * time.Second},
		{"DisconnectTimeout", cfg.DisconnectTimeout, uint(500)},
		{"CACert", cfg.CACert, "/path/ca.crt"},
		{"ClientCert", cfg.ClientCert, "/path/client.crt"},
		{"ClientKey", cfg.ClientKey, "/path/client.key"},
		{"TLSEnabled", cfg.TLSEnabled, true},
		{"InsecureSkip", cfg.InsecureSkip, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadMQTTFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadPipelineFromEnv(t *testing.T) {
	// Start with defaults
	cfg := defaultPipelineConfig()

	// Set environment variables
	t.Setenv("PIPELINE_ANALYSIS_WORKERS", "12")
	t.Setenv("PIPELINE_ERROR_BACKOFF", "2s")
	t.Setenv("PIPELINE_ACK_TIMEOUT", "3s")
	t.Setenv("PIPELINE_SHUTDOWN_TIMEOUT", "15s")

	// Load from environment
	loadPipelineFromEnv(&cfg)

	// Verify
	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"AnalysisWorkers", cfg.AnalysisWorkers, 12},
		{"ErrorBackoff", cfg.ErrorBackoff, 2 * time.Second},
		{"AckTimeout", cfg.AckTimeout, 3 * time.Second},
		{"ShutdownTimeout", cfg.ShutdownTimeout, 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadPipelineFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadAPIFromEnv(t *testing.T) {
	cfg := defaultAPIConfig()

	t.Setenv("API_ENABLED", "false")
	t.Setenv("API_ADDRESS", ":9090")

	loadAPIFromEnv(&cfg)

	if cfg.Enabled {
		t.Error("Enabled = true; want false")
	}
	if cfg.Address != ":9090" {
		t.Errorf("Address = %s; want :9090", cfg.Address)
	}
}

func TestLoadIngestFromEnv(t *testing.T) {
	cfg := defaultIngestConfig()

	t.Setenv("INGEST_POSTS_PER_MINUTE", "120")
	t.Setenv("INGEST_STREAM_MAXLEN", "0")

	loadIngestFromEnv(&cfg)

	if cfg.PostsPerMinute != 120 {
		t.Errorf("PostsPerMinute = %d; want 120", cfg.PostsPerMinute)
	}
	// Zero means "no cap" and must not be treated as "unset"
	if cfg.StreamMaxLen != 0 {
		t.Errorf("StreamMaxLen = %d; want 0", cfg.StreamMaxLen)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Run("getEnvString", testGetEnvString)
	t.Run("getEnvInt", testGetEnvInt)
	t.Run("getEnvFloat", testGetEnvFloat)
	t.Run("getEnvDuration", testGetEnvDuration)
	t.Run("getEnvBool", testGetEnvBool)
}

func testGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "hello")
	if got := getEnvString("TEST_STRING"); got != "hello" {
		t.Errorf("getEnvString() = %s; want hello", got)
	}
	if got := getEnvString("NONEXISTENT"); got != "" {
		t.Errorf("getEnvString() = %s; want empty string", got)
	}
}

func testGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := getEnvInt("TEST_INT"); got != 42 {
		t.Errorf("getEnvInt() = %d; want 42", got)
	}
	if got := getEnvInt("NONEXISTENT"); got != 0 {
		t.Errorf("getEnvInt() = %d; want 0", got)
	}
	t.Setenv("TEST_INT_INVALID", "not-a-number")
	if got := getEnvInt("TEST_INT_INVALID"); got != 0 {
		t.Errorf("getEnvInt() with invalid value = %d; want 0", got)
	}
}

func testGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.75")
	if got := getEnvFloat("TEST_FLOAT"); got != 0.75 {
		t.Errorf("getEnvFloat() = %v; want 0.75", got)
	}
	if got := getEnvFloat("NONEXISTENT"); got != 0 {
		t.Errorf("getEnvFloat() = %v; want 0", got)
	}
	t.Setenv("TEST_FLOAT_INVALID", "not-a-float")
	if got := getEnvFloat("TEST_FLOAT_INVALID"); got != 0 {
		t.Errorf("getEnvFloat() with invalid value = %v; want 0", got)
	}
}

func testGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "5s")
	if got := getEnvDuration("TEST_DURATION"); got != 5*time.Second {
		t.Errorf("getEnvDuration() = %v; want 5s", got)
	}
	if got := getEnvDuration("NONEXISTENT"); got != 0 {
		t.Errorf("getEnvDuration() = %v; want 0", got)
	}
	t.Setenv("TEST_DURATION_INVALID", "not-a-duration")
	if got := getEnvDuration("TEST_DURATION_INVALID"); got != 0 {
		t.Errorf("getEnvDuration() with invalid value = %v; want 0", got)
	}
}

func testGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL_TRUE", "true")
	if got := getEnvBool("TEST_BOOL_TRUE"); !got {
		t.Error("getEnvBool() = false; want true")
	}
	t.Setenv("TEST_BOOL_FALSE", "false")
	if got := getEnvBool("TEST_BOOL_FALSE"); got {
		t.Error("getEnvBool() = true; want false")
	}
	if got := getEnvBool("NONEXISTENT"); got {
		t.Error("getEnvBool() = true; want false")
	}
}

func TestLoadRedisFromEnv_PartialOverride(t *testing.T) {
	// Start with defaults
	cfg := defaultRedisConfig()
	originalStream := cfg.Stream

	// Only override address
	t.Setenv("REDIS_ADDRESS", "custom:6379")

	loadRedisFromEnv(&cfg)

	// Address should be overridden
	if cfg.Address != "custom:6379" {
		t.Errorf("Address = %s; want custom:6379", cfg.Address)
	}

	// Stream should remain default
	if cfg.Stream != originalStream {
		t.Errorf("Stream = %s; want %s", cfg.Stream, originalStream)
	}
}
