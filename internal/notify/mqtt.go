package notify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/model"
)

// MQTTSink publishes events to an MQTT broker, one topic per event
// kind under the configured root.
type MQTTSink struct {
	client            mqtt.Client
	resultsTopic      string
	alertsTopic       string
	qos               byte
	publishTimeout    time.Duration
	disconnectTimeout uint
	log               *log.Logger
}

// NewMQTTSink connects to the MQTT broker with auto-reconnect enabled.
func NewMQTTSink(cfg *config.MQTTConfig, logger *log.Logger) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetWriteTimeout(cfg.PublishTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOrderMatters(false) // events are independent, order is irrelevant

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if err != nil {
			logger.Error("MQTT connection lost: %v", err)
		}
	})

	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Info("MQTT reconnecting...")
	})

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("MQTT connected successfully")
	})

	if cfg.TLSEnabled {
		tlsConfig, err := newTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	sink := &MQTTSink{
		client:            client,
		resultsTopic:      cfg.TopicRoot + "/results",
		alertsTopic:       cfg.TopicRoot + "/alerts",
		qos:               cfg.QoS,
		publishTimeout:    cfg.PublishTimeout,
		disconnectTimeout: cfg.DisconnectTimeout,
		log:               logger,
	}
	logger.Info("Publishing events to MQTT topics '%s' and '%s'", sink.resultsTopic, sink.alertsTopic)
	return sink, nil
}

// newTLSConfig creates a TLS configuration from MQTT config
func newTLSConfig(cfg *config.MQTTConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		// Note: Enabling InsecureSkipVerify weakens TLS security and should only be used for testing.
		InsecureSkipVerify: cfg.InsecureSkip, // #nosec G402 - configurable for testing environments
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func (s *MQTTSink) ResultsPersisted(ctx context.Context, posts []model.Post, results []model.AnalysisResult) error {
	events, err := buildResultEvents(posts, results)
	if err != nil {
		return err
	}
	for _, event := range events {
		if err := s.publish(ctx, s.resultsTopic, event); err != nil {
			return err
		}
	}
	return nil
}

func (s *MQTTSink) AlertRaised(ctx context.Context, alert model.Alert) error {
	return s.publish(ctx, s.alertsTopic, buildAlertEvent(alert))
}

// publish sends a payload and waits for broker confirmation up to the
// publish timeout.
func (s *MQTTSink) publish(ctx context.Context, topic string, payload []byte) error {
	token := s.client.Publish(topic, s.qos, false, payload)

	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()

	select {
	case <-done:
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.publishTimeout):
		return fmt.Errorf("mqtt publish timeout")
	}
}

// Close disconnects from the MQTT broker
func (s *MQTTSink) Close() error {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(s.disconnectTimeout)
	}
	return nil
}
