// Package notify publishes pipeline events to downstream consumers over
// Redis pub/sub or MQTT. Delivery is fire-and-forget: the source of
// truth is Postgres, events only exist so dashboards react without
// polling.
package notify

import (
	"context"
	"fmt"

	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/model"
	"github.com/streamsense/sentiment-worker/pkg/jsonfast"
)

// Event type discriminators carried in the "type" field.
const (
	EventResultPersisted = "result_persisted"
	EventAlertRaised     = "alert_raised"
)

const eventSize = 256

// Sink receives pipeline events after the corresponding rows are
// committed. Implementations must tolerate publish failures without
// affecting the pipeline; callers log and move on.
type Sink interface {
	// ResultsPersisted publishes one event per post in a committed
	// batch. Inputs are parallel: posts[i] produced results[i].
	ResultsPersisted(ctx context.Context, posts []model.Post, results []model.AnalysisResult) error
	AlertRaised(ctx context.Context, alert model.Alert) error
	Close() error
}

// New builds the sink selected by the notify backend setting.
func New(cfg *config.Config, logger *log.Logger) (Sink, error) {
	switch cfg.Notify.Backend {
	case config.NotifyBackendRedis:
		return NewRedisSink(&cfg.Redis, &cfg.Notify, logger)
	case config.NotifyBackendMQTT:
		return NewMQTTSink(&cfg.MQTT, logger)
	default:
		logger.Info("Event notifications disabled")
		return NopSink{}, nil
	}
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) ResultsPersisted(context.Context, []model.Post, []model.AnalysisResult) error {
	return nil
}
func (NopSink) AlertRaised(context.Context, model.Alert) error { return nil }
func (NopSink) Close() error                                   { return nil }

// buildResultEvents renders a result_persisted payload per batch item.
// Each event owns its buffer; publishers may hold them past the call.
func buildResultEvents(posts []model.Post, results []model.AnalysisResult) ([][]byte, error) {
	if len(posts) != len(results) {
		return nil, fmt.Errorf("posts/results length mismatch: %d != %d", len(posts), len(results))
	}

	events := make([][]byte, 0, len(results))
	for i := range results {
		b := jsonfast.New(eventSize)
		b.BeginObject()
		b.AddStringField("type", EventResultPersisted)
		b.AddStringField("post_id", results[i].PostID)
		b.AddStringField("source", posts[i].Source)
		b.AddStringField("sentiment_label", results[i].SentimentLabel)
		b.AddFloatField("confidence", results[i].Confidence)
		b.AddStringField("emotion", results[i].Emotion)
		b.AddStringField("model_name", results[i].ModelName)
		b.AddTimeRFC3339Field("analyzed_at", results[i].AnalyzedAt)
		b.EndObject()
		events = append(events, b.Bytes())
	}
	return events, nil
}

func buildAlertEvent(alert model.Alert) []byte {
	b := jsonfast.New(eventSize)
	b.BeginObject()
	b.AddStringField("type", EventAlertRaised)
	b.AddStringField("alert_type", alert.AlertType)
	b.AddFloatField("threshold_value", alert.ThresholdValue)
	b.AddFloatField("actual_value", alert.ActualValue)
	b.AddTimeRFC3339Field("window_start", alert.WindowStart)
	b.AddTimeRFC3339Field("window_end", alert.WindowEnd)
	b.AddIntField("post_count", alert.PostCount)
	b.AddTimeRFC3339Field("triggered_at", alert.TriggeredAt)
	b.EndObject()
	return b.Bytes()
}
