package config

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"
)

// Load loads configuration with precedence: defaults → environment
// variables → command line flags. A .env file in the working directory
// is folded into the environment first, without overriding variables
// that are already set. Validation and runtime transformations run
// before the configuration is returned.
func Load() (*Config, error) {
	// Parse command line flags if not already parsed
	if !flag.Parsed() {
		flag.Parse()
	}

	// Optional .env file; a missing file is not an error
	_ = godotenv.Load()

	// Step 1: Start with defaults
	cfg := defaultConfig()

	// Step 2: Apply environment variables
	loadRedisFromEnv(&cfg.Redis)
	loadDatabaseFromEnv(&cfg.Database)
	loadAnalyzerFromEnv(&cfg.Analyzer)
	loadAlertFromEnv(&cfg.Alert)
	loadNotifyFromEnv(&cfg.Notify)
	loadMQTTFromEnv(&cfg.MQTT)
	loadPipelineFromEnv(&cfg.Pipeline)
	loadAPIFromEnv(&cfg.API)
	loadIngestFromEnv(&cfg.Ingest)

	// Step 3: Apply command line flags (highest precedence)
	applyRedisFlags(&cfg.Redis)
	applyDatabaseFlags(&cfg.Database)
	applyAnalyzerFlags(&cfg.Analyzer)
	applyAlertFlags(&cfg.Alert)
	applyNotifyFlags(&cfg.Notify)
	applyMQTTFlags(&cfg.MQTT)
	applyPipelineFlags(&cfg.Pipeline)
	applyAPIFlags(&cfg.API)
	applyIngestFlags(&cfg.Ingest)

	// Step 4: Apply runtime validations and transformations
	if err := applyRuntimeValidation(cfg); err != nil {
		return nil, err
	}

	// Step 5: Validate the final configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
