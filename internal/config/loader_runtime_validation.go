package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// applyRuntimeValidation applies runtime validations and transformations
func applyRuntimeValidation(cfg *Config) error {
	deriveConsumerName(&cfg.Redis)
	deriveDeadLetterStream(&cfg.Redis)
	normalizeNotifyBackend(&cfg.Notify)
	return checkTLSFiles(cfg)
}

// deriveConsumerName builds a unique consumer name when none is configured.
// Each worker needs its own name within the consumer group, otherwise two
// processes would drain each other's pending entries.
func deriveConsumerName(cfg *RedisConfig) {
	if cfg.Consumer != "" {
		return
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	cfg.Consumer = fmt.Sprintf("worker-%s-%d-%s", host, os.Getpid(), uuid.NewString()[:8])
}

// deriveDeadLetterStream defaults the dead letter stream to "<stream>.dead"
// when dead-lettering is enabled and no explicit target was configured
func deriveDeadLetterStream(cfg *RedisConfig) {
	if cfg.MaxDeliveries > 0 && cfg.DeadLetterStream == "" {
		cfg.DeadLetterStream = cfg.Stream + ".dead"
	}
}

// normalizeNotifyBackend lowercases the backend name so "Redis" and "REDIS"
// select the same sink
func normalizeNotifyBackend(cfg *NotifyConfig) {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
}

// checkTLSFiles verifies that configured MQTT TLS files exist before the
// sink tries to load them
func checkTLSFiles(cfg *Config) error {
	if cfg.Notify.Backend != NotifyBackendMQTT || !cfg.MQTT.TLSEnabled {
		return nil
	}
	if (cfg.MQTT.ClientCert == "") != (cfg.MQTT.ClientKey == "") {
		return fmt.Errorf("mqtt client cert and key must be configured together")
	}
	for _, path := range []string{cfg.MQTT.CACert, cfg.MQTT.ClientCert, cfg.MQTT.ClientKey} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("mqtt TLS file not accessible: %w", err)
		}
	}
	return nil
}
