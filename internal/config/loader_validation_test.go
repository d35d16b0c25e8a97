package config

import (
	"testing"
)

func TestValidate_Success(t *testing.T) {
	cfg := defaultConfig()
	cfg.Redis.Consumer = "consumer-1"

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() failed for valid config: %v", err)
	}
}

func TestValidate_MQTTBackendChecksMQTT(t *testing.T) {
	cfg := defaultConfig()
	cfg.Redis.Consumer = "consumer-1"
	cfg.Notify.Backend = NotifyBackendMQTT
	cfg.MQTT.Broker = ""

	if err := Validate(cfg); err == nil {
		t.Error("Validate() error = nil; want mqtt broker error")
	}
}

func TestValidate_RedisBackendIgnoresMQTT(t *testing.T) {
	cfg := defaultConfig()
	cfg.Redis.Consumer = "consumer-1"
	cfg.Notify.Backend = NotifyBackendRedis
	cfg.MQTT.Broker = ""

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v; want nil when MQTT backend is not selected", err)
	}
}

func TestValidateRedis(t *testing.T) {
	tests := getRedisValidationTests()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRedis(&tt.cfg)
			checkValidationError(t, err, tt.wantError)
		})
	}
}

func getRedisValidationTests() []redisTestCase {
	valid := RedisConfig{
		Address:   "localhost:6379",
		Stream:    "posts",
		Group:     "workers",
		Consumer:  "consumer-1",
		BatchSize: 10,
	}

	withAddress := func(v string) RedisConfig { c := valid; c.Address = v; return c }
	withStream := func(v string) RedisConfig { c := valid; c.Stream = v; return c }
	withGroup := func(v string) RedisConfig { c := valid; c.Group = v; return c }
	withConsumer := func(v string) RedisConfig { c := valid; c.Consumer = v; return c }
	withBatch := func(v int) RedisConfig { c := valid; c.BatchSize = v; return c }

	deadLetterClash := valid
	deadLetterClash.MaxDeliveries = 5
	deadLetterClash.DeadLetterStream = "posts"

	return []redisTestCase{
		{name: "valid config", cfg: valid, wantError: ""},
		{name: "empty address", cfg: withAddress(""), wantError: "redis address cannot be empty"},
		{name: "empty stream", cfg: withStream(""), wantError: "redis stream cannot be empty"},
		{name: "empty group", cfg: withGroup(""), wantError: "redis group cannot be empty"},
		{name: "empty consumer", cfg: withConsumer(""), wantError: "redis consumer name cannot be empty"},
		{name: "zero batch size", cfg: withBatch(0), wantError: "redis batch size must be positive"},
		{name: "negative batch size", cfg: withBatch(-1), wantError: "redis batch size must be positive"},
		{name: "dead letter equals stream", cfg: deadLetterClash, wantError: "redis dead letter stream cannot equal the source stream"},
	}
}

type redisTestCase struct {
	name      string
	cfg       RedisConfig
	wantError string
}

type analyzerTestCase struct {
	name      string
	cfg       AnalyzerConfig
	wantError string
}

type alertTestCase struct {
	name      string
	cfg       AlertConfig
	wantError string
}

type mqttTestCase struct {
	name      string
	cfg       MQTTConfig
	wantError string
}

type pipelineTestCase struct {
	name      string
	cfg       PipelineConfig
	wantError string
}

func checkValidationError(t *testing.T, err error, wantError string) {
	t.Helper()
	if wantError == "" {
		if err != nil {
			t.Errorf("validation error = %v; want nil", err)
		}
	} else {
		if err == nil {
			t.Errorf("validation error = nil; want %s", wantError)
		} else if err.Error() != wantError {
			t.Errorf("validation error = %s; want %s", err.Error(), wantError)
		}
	}
}

func TestValidateDatabase(t *testing.T) {
	valid := defaultDatabaseConfig()
	if err := validateDatabase(&valid); err != nil {
		t.Errorf("validateDatabase() error = %v; want nil", err)
	}

	empty := valid
	empty.URL = ""
	checkValidationError(t, validateDatabase(&empty), "database URL cannot be empty")

	conns := valid
	conns.MaxOpenConns = 0
	checkValidationError(t, validateDatabase(&conns), "database max open conns must be positive")
}

func TestValidateAnalyzer(t *testing.T) {
	tests := getAnalyzerValidationTests()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAnalyzer(&tt.cfg)
			checkValidationError(t, err, tt.wantError)
		})
	}
}

func getAnalyzerValidationTests() []analyzerTestCase {
	valid := defaultAnalyzerConfig()

	noTimeout := valid
	noTimeout.LocalTimeout = 0

	noModel := valid
	noModel.Model = ""

	noAttempts := valid
	noAttempts.MaxAttempts = 0

	badDelays := valid
	badDelays.RetryMaxDelay = valid.RetryBaseDelay / 2

	noPrompt := valid
	noPrompt.MaxPromptChars = 0

	return []analyzerTestCase{
		{name: "valid config", cfg: valid, wantError: ""},
		{name: "zero local timeout", cfg: noTimeout, wantError: "analyzer local timeout must be positive"},
		{name: "empty model", cfg: noModel, wantError: "analyzer model cannot be empty"},
		{name: "zero max attempts", cfg: noAttempts, wantError: "analyzer max attempts must be positive"},
		{name: "max delay below base", cfg: badDelays, wantError: "analyzer retry delays must be positive and max >= base"},
		{name: "zero prompt chars", cfg: noPrompt, wantError: "analyzer max prompt chars must be positive"},
	}
}

func TestValidateAlert(t *testing.T) {
	tests := getAlertValidationTests()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAlert(&tt.cfg)
			checkValidationError(t, err, tt.wantError)
		})
	}
}

func getAlertValidationTests() []alertTestCase {
	valid := defaultAlertConfig()

	noInterval := valid
	noInterval.Interval = 0

	noWindow := valid
	noWindow.Window = 0

	zeroThreshold := valid
	zeroThreshold.NegativeRatioThreshold = 0

	highThreshold := valid
	highThreshold.NegativeRatioThreshold = 1.5

	fullThreshold := valid
	fullThreshold.NegativeRatioThreshold = 1.0

	noMinPosts := valid
	noMinPosts.MinPosts = 0

	return []alertTestCase{
		{name: "valid config", cfg: valid, wantError: ""},
		{name: "threshold of one is allowed", cfg: fullThreshold, wantError: ""},
		{name: "zero interval", cfg: noInterval, wantError: "alert interval must be positive"},
		{name: "zero window", cfg: noWindow, wantError: "alert window must be positive"},
		{name: "zero threshold", cfg: zeroThreshold, wantError: "alert negative ratio threshold must be in (0, 1]"},
		{name: "threshold above one", cfg: highThreshold, wantError: "alert negative ratio threshold must be in (0, 1]"},
		{name: "zero min posts", cfg: noMinPosts, wantError: "alert min posts must be positive"},
	}
}

func TestValidateMQTT(t *testing.T) {
	tests := getMQTTValidationTests()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMQTT(&tt.cfg)
			checkValidationError(t, err, tt.wantError)
		})
	}
}

func getMQTTValidationTests() []mqttTestCase {
	valid := MQTTConfig{
		Broker:    "tcp://localhost:1883",
		ClientID:  "test-client",
		TopicRoot: "sentiment/events",
		QoS:       1,
	}

	noBroker := valid
	noBroker.Broker = ""

	noClientID := valid
	noClientID.ClientID = ""

	noTopicRoot := valid
	noTopicRoot.TopicRoot = ""

	badQoS := valid
	badQoS.QoS = 3

	return []mqttTestCase{
		{name: "valid config", cfg: valid, wantError: ""},
		{name: "empty broker", cfg: noBroker, wantError: "mqtt broker cannot be empty"},
		{name: "empty client ID", cfg: noClientID, wantError: "mqtt client ID cannot be empty"},
		{name: "empty topic root", cfg: noTopicRoot, wantError: "mqtt topic root cannot be empty"},
		{name: "invalid QoS", cfg: badQoS, wantError: "mqtt QoS must be 0, 1, or 2"},
	}
}

func TestValidatePipeline(t *testing.T) {
	tests := getPipelineValidationTests()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePipeline(&tt.cfg)
			checkValidationError(t, err, tt.wantError)
		})
	}
}

func getPipelineValidationTests() []pipelineTestCase {
	valid := defaultPipelineConfig()

	noWorkers := valid
	noWorkers.AnalysisWorkers = 0

	negativeWorkers := valid
	negativeWorkers.AnalysisWorkers = -1

	noBackoff := valid
	noBackoff.ErrorBackoff = 0

	noShutdown := valid
	noShutdown.ShutdownTimeout = 0

	return []pipelineTestCase{
		{name: "valid config", cfg: valid, wantError: ""},
		{name: "zero analysis workers", cfg: noWorkers, wantError: "pipeline analysis workers must be positive"},
		{name: "negative analysis workers", cfg: negativeWorkers, wantError: "pipeline analysis workers must be positive"},
		{name: "zero error backoff", cfg: noBackoff, wantError: "pipeline error backoff must be positive"},
		{name: "zero shutdown timeout", cfg: noShutdown, wantError: "pipeline shutdown timeout must be positive"},
	}
}

func TestValidateAPI(t *testing.T) {
	enabled := APIConfig{Enabled: true, Address: ":8080"}
	if err := validateAPI(&enabled); err != nil {
		t.Errorf("validateAPI() error = %v; want nil", err)
	}

	noAddress := APIConfig{Enabled: true, Address: ""}
	checkValidationError(t, validateAPI(&noAddress), "api address cannot be empty when the API is enabled")

	// A disabled API does not need an address
	disabled := APIConfig{Enabled: false, Address: ""}
	if err := validateAPI(&disabled); err != nil {
		t.Errorf("validateAPI() error = %v; want nil for disabled API", err)
	}
}

func TestValidateIngest(t *testing.T) {
	valid := defaultIngestConfig()
	if err := validateIngest(&valid); err != nil {
		t.Errorf("validateIngest() error = %v; want nil", err)
	}

	noRate := valid
	noRate.PostsPerMinute = 0
	checkValidationError(t, validateIngest(&noRate), "ingest posts per minute must be positive")

	negativeCap := valid
	negativeCap.StreamMaxLen = -1
	checkValidationError(t, validateIngest(&negativeCap), "ingest stream maxlen cannot be negative")
}
