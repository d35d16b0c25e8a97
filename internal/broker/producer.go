package broker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/model"
)

// Producer appends posts to the stream. Each append trims the stream
// to roughly maxLen entries so an idle consumer side cannot grow Redis
// without bound; maxLen <= 0 leaves the stream uncapped.
type Producer struct {
	rdb    *redis.Client
	stream string
	maxLen int64
	log    *log.Logger
}

// NewProducer connects to Redis for the publishing side of the stream.
func NewProducer(cfg *config.RedisConfig, maxLen int64, logger *log.Logger) (*Producer, error) {
	rdb := NewRedisClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Producing to stream '%s' (maxlen ~%d)", cfg.Stream, maxLen)
	return &Producer{
		rdb:    rdb,
		stream: cfg.Stream,
		maxLen: maxLen,
		log:    logger,
	}, nil
}

// Publish appends one post and returns its stream entry ID.
func (p *Producer) Publish(ctx context.Context, post model.Post) (string, error) {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: post.Values(),
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	id, err := p.rdb.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd failed for post %s: %w", post.PostID, err)
	}
	return id, nil
}

// Close closes the Redis client connection
func (p *Producer) Close() error {
	if p.rdb != nil {
		return p.rdb.Close()
	}
	return nil
}
