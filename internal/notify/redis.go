package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/streamsense/sentiment-worker/internal/broker"
	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/model"
)

// RedisSink publishes events over Redis pub/sub. It holds its own
// connection so slow subscribers never back-pressure the consumer group
// client.
type RedisSink struct {
	rdb            *redis.Client
	resultsChannel string
	alertsChannel  string
	log            *log.Logger
}

// NewRedisSink connects to Redis and derives the event channels from
// the configured prefix.
func NewRedisSink(redisCfg *config.RedisConfig, notifyCfg *config.NotifyConfig, logger *log.Logger) (*RedisSink, error) {
	rdb := broker.NewRedisClient(redisCfg)

	ctx, cancel := context.WithTimeout(context.Background(), redisCfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	sink := &RedisSink{
		rdb:            rdb,
		resultsChannel: notifyCfg.ChannelPrefix + ".results",
		alertsChannel:  notifyCfg.ChannelPrefix + ".alerts",
		log:            logger,
	}
	logger.Info("Publishing events to Redis channels '%s' and '%s'", sink.resultsChannel, sink.alertsChannel)
	return sink, nil
}

// ResultsPersisted publishes the batch events in a single pipeline
// round trip.
func (s *RedisSink) ResultsPersisted(ctx context.Context, posts []model.Post, results []model.AnalysisResult) error {
	events, err := buildResultEvents(posts, results)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, event := range events {
			pipe.Publish(ctx, s.resultsChannel, event)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish of %d result events failed: %w", len(events), err)
	}
	return nil
}

func (s *RedisSink) AlertRaised(ctx context.Context, alert model.Alert) error {
	if err := s.rdb.Publish(ctx, s.alertsChannel, buildAlertEvent(alert)).Err(); err != nil {
		return fmt.Errorf("publish of alert event failed: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	if s.rdb != nil {
		return s.rdb.Close()
	}
	return nil
}
