package config

import "fmt"

// Validate checks configuration constraints
func Validate(cfg *Config) error {
	if err := validateRedis(&cfg.Redis); err != nil {
		return err
	}
	if err := validateDatabase(&cfg.Database); err != nil {
		return err
	}
	if err := validateAnalyzer(&cfg.Analyzer); err != nil {
		return err
	}
	if err := validateAlert(&cfg.Alert); err != nil {
		return err
	}
	if err := validateNotify(cfg); err != nil {
		return err
	}
	if err := validatePipeline(&cfg.Pipeline); err != nil {
		return err
	}
	if err := validateAPI(&cfg.API); err != nil {
		return err
	}
	return validateIngest(&cfg.Ingest)
}

// validateRedis validates Redis configuration
func validateRedis(cfg *RedisConfig) error {
	if cfg.Address == "" {
		return fmt.Errorf("redis address cannot be empty")
	}
	if cfg.Stream == "" {
		return fmt.Errorf("redis stream cannot be empty")
	}
	if cfg.Group == "" {
		return fmt.Errorf("redis group cannot be empty")
	}
	if cfg.Consumer == "" {
		return fmt.Errorf("redis consumer name cannot be empty")
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("redis batch size must be positive")
	}
	if cfg.MaxDeliveries < 0 {
		return fmt.Errorf("redis max deliveries cannot be negative")
	}
	if cfg.MaxDeliveries > 0 && cfg.DeadLetterStream == cfg.Stream {
		return fmt.Errorf("redis dead letter stream cannot equal the source stream")
	}
	return nil
}

// validateDatabase validates database configuration
func validateDatabase(cfg *DatabaseConfig) error {
	if cfg.URL == "" {
		return fmt.Errorf("database URL cannot be empty")
	}
	if cfg.MaxOpenConns < 1 {
		return fmt.Errorf("database max open conns must be positive")
	}
	if cfg.MaxIdleConns < 0 {
		return fmt.Errorf("database max idle conns cannot be negative")
	}
	return nil
}

// validateAnalyzer validates analyzer configuration
func validateAnalyzer(cfg *AnalyzerConfig) error {
	if cfg.LocalTimeout <= 0 {
		return fmt.Errorf("analyzer local timeout must be positive")
	}
	if cfg.Model == "" {
		return fmt.Errorf("analyzer model cannot be empty")
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("analyzer max attempts must be positive")
	}
	if cfg.RetryBaseDelay <= 0 || cfg.RetryMaxDelay < cfg.RetryBaseDelay {
		return fmt.Errorf("analyzer retry delays must be positive and max >= base")
	}
	if cfg.MaxPromptChars < 1 {
		return fmt.Errorf("analyzer max prompt chars must be positive")
	}
	return nil
}

// validateAlert validates alert monitor configuration
func validateAlert(cfg *AlertConfig) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("alert interval must be positive")
	}
	if cfg.Window <= 0 {
		return fmt.Errorf("alert window must be positive")
	}
	if cfg.NegativeRatioThreshold <= 0 || cfg.NegativeRatioThreshold > 1 {
		return fmt.Errorf("alert negative ratio threshold must be in (0, 1]")
	}
	if cfg.MinPosts < 1 {
		return fmt.Errorf("alert min posts must be positive")
	}
	return nil
}

// validateNotify validates notification configuration. MQTT settings are
// only checked when the MQTT backend is selected.
func validateNotify(cfg *Config) error {
	switch cfg.Notify.Backend {
	case NotifyBackendRedis, NotifyBackendNone:
		return nil
	case NotifyBackendMQTT:
		return validateMQTT(&cfg.MQTT)
	default:
		return fmt.Errorf("notify backend must be one of redis, mqtt, none (got %q)", cfg.Notify.Backend)
	}
}

// validateMQTT validates MQTT configuration
func validateMQTT(cfg *MQTTConfig) error {
	if cfg.Broker == "" {
		return fmt.Errorf("mqtt broker cannot be empty")
	}
	if cfg.ClientID == "" {
		return fmt.Errorf("mqtt client ID cannot be empty")
	}
	if cfg.TopicRoot == "" {
		return fmt.Errorf("mqtt topic root cannot be empty")
	}
	if cfg.QoS > 2 {
		return fmt.Errorf("mqtt QoS must be 0, 1, or 2")
	}
	return nil
}

// validatePipeline validates pipeline configuration
func validatePipeline(cfg *PipelineConfig) error {
	if cfg.AnalysisWorkers < 1 {
		return fmt.Errorf("pipeline analysis workers must be positive")
	}
	if cfg.ErrorBackoff <= 0 {
		return fmt.Errorf("pipeline error backoff must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("pipeline shutdown timeout must be positive")
	}
	return nil
}

// validateAPI validates HTTP API configuration
func validateAPI(cfg *APIConfig) error {
	if cfg.Enabled && cfg.Address == "" {
		return fmt.Errorf("api address cannot be empty when the API is enabled")
	}
	return nil
}

// validateIngest validates ingester configuration
func validateIngest(cfg *IngestConfig) error {
	if cfg.PostsPerMinute < 1 {
		return fmt.Errorf("ingest posts per minute must be positive")
	}
	if cfg.StreamMaxLen < 0 {
		return fmt.Errorf("ingest stream maxlen cannot be negative")
	}
	return nil
}
