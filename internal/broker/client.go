package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/message"
	"github.com/streamsense/sentiment-worker/internal/model"
)

// Client manages consumer-group operations on the posts stream
type Client struct {
	rdb           *redis.Client
	stream        string
	group         string
	consumer      string
	deadLetter    string
	maxDeliveries int64
	batchSize     int64
	blockTimeout  time.Duration
	claimIdle     time.Duration
	log           *log.Logger
}

// NewClient connects to Redis and joins the consumer group, creating
// both the stream and the group if they do not exist yet
func NewClient(cfg *config.RedisConfig, logger *log.Logger) (*Client, error) {
	rdb := NewRedisClient(cfg)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	client := &Client{
		rdb:           rdb,
		stream:        cfg.Stream,
		group:         cfg.Group,
		consumer:      cfg.Consumer,
		deadLetter:    cfg.DeadLetterStream,
		maxDeliveries: cfg.MaxDeliveries,
		batchSize:     int64(cfg.BatchSize),
		blockTimeout:  cfg.BlockTimeout,
		claimIdle:     cfg.ClaimIdle,
		log:           logger,
	}

	if err := client.ensureGroup(ctx); err != nil {
		return nil, err
	}

	logger.Info("Consuming stream '%s' in group '%s' as '%s'", cfg.Stream, cfg.Group, cfg.Consumer)
	return client, nil
}

// NewRedisClient builds a client from the connection settings. Shared
// with the producer and the notify sink so every side dials the same way.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		// Explicitly disable maintenance notifications
		// This prevents the client from sending extra commands to Redis
		// which can add unnecessary load.
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
}

func (c *Client) ensureGroup(ctx context.Context) error {
	err := c.rdb.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil {
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			c.log.Info("Consumer group '%s' already exists on stream '%s', joining existing group", c.group, c.stream)
			return nil
		}
		return fmt.Errorf("failed to create consumer group %s on stream %s: %w", c.group, c.stream, err)
	}
	c.log.Info("Created consumer group '%s' on stream '%s'", c.group, c.stream)
	return nil
}

// ReadBatch fetches new stream entries using XREADGROUP and decodes
// them into posts. Entries that do not decode are skipped and stay
// pending; the claim cycle dead-letters them once they exhaust their
// deliveries.
func (c *Client) ReadBatch(ctx context.Context) (message.Batch[model.Post], error) {
	result, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    c.batchSize,
		Block:    c.blockTimeout,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			// No entries available
			return message.Batch[model.Post]{}, nil
		}
		return message.Batch[model.Post]{}, fmt.Errorf("xreadgroup failed: %w", err)
	}

	if len(result) == 0 {
		return message.Batch[model.Post]{}, nil
	}

	return message.Batch[model.Post]{Items: c.decodePosts(result[0].Messages)}, nil
}

// ClaimIdle takes over pending entries that have sat idle longer than
// the configured claim threshold, typically entries owned by a crashed
// worker. Entries that have exhausted their delivery budget are moved
// to the dead letter stream instead of being returned for another
// attempt.
func (c *Client) ClaimIdle(ctx context.Context) (message.Batch[model.Post], error) {
	pending, err := c.pendingEntries(ctx, c.claimIdle, c.batchSize)
	if err != nil {
		return message.Batch[model.Post]{}, err
	}
	if len(pending) == 0 {
		return message.Batch[model.Post]{}, nil
	}

	ids := make([]string, len(pending))
	deliveries := make(map[string]int64, len(pending))
	for i, p := range pending {
		ids[i] = p.ID
		deliveries[p.ID] = p.RetryCount
	}

	claimed, err := c.rdb.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.stream,
		Group:    c.group,
		Consumer: c.consumer,
		MinIdle:  c.claimIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return message.Batch[model.Post]{}, fmt.Errorf("xclaim failed: %w", err)
	}

	keep, dead := partitionClaimed(claimed, deliveries, c.maxDeliveries)

	for _, msg := range dead {
		c.divertToDeadLetter(ctx, msg, deliveries[msg.ID])
	}

	return message.Batch[model.Post]{Items: c.decodePosts(keep)}, nil
}

// partitionClaimed splits claimed entries into those that get another
// processing attempt and those that have already been delivered
// maxDeliveries times. A limit of zero disables dead-lettering.
func partitionClaimed(
	claimed []redis.XMessage, deliveries map[string]int64, maxDeliveries int64,
) (keep, dead []redis.XMessage) {
	if maxDeliveries <= 0 {
		return claimed, nil
	}
	for _, msg := range claimed {
		if deliveries[msg.ID] >= maxDeliveries {
			dead = append(dead, msg)
		} else {
			keep = append(keep, msg)
		}
	}
	return keep, dead
}

// divertToDeadLetter copies the entry onto the dead letter stream and
// acknowledges the original. When the copy fails the entry stays
// pending and the next claim cycle retries the divert.
func (c *Client) divertToDeadLetter(ctx context.Context, msg redis.XMessage, deliveryCount int64) {
	if _, err := c.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: c.deadLetter,
		Values: msg.Values,
	}).Result(); err != nil {
		c.log.Error("Failed to dead-letter entry %s: %v", msg.ID, err)
		return
	}

	if err := c.rdb.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
		c.log.Error("Failed to ack dead-lettered entry %s: %v", msg.ID, err)
		return
	}

	c.log.Warn("Entry %s moved to dead letter stream %s after %d deliveries", msg.ID, c.deadLetter, deliveryCount)
}

func (c *Client) pendingEntries(
	ctx context.Context, idle time.Duration, count int64,
) ([]redis.XPendingExt, error) {
	pending, err := c.rdb.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.stream,
		Group:  c.group,
		Idle:   idle,
		Start:  "-",
		End:    "+",
		Count:  count,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("xpending failed: %w", err)
	}

	return pending, nil
}

// decodePosts turns raw stream entries into typed posts. Malformed
// entries are logged and dropped from the batch without being acked.
func (c *Client) decodePosts(msgs []redis.XMessage) []message.Stream[model.Post] {
	items := make([]message.Stream[model.Post], 0, len(msgs))
	for _, msg := range msgs {
		post, err := model.PostFromValues(msg.Values)
		if err != nil {
			c.log.Warn("Skipping malformed stream entry %s: %v", msg.ID, err)
			continue
		}
		items = append(items, message.Stream[model.Post]{
			ID:     msg.ID,
			Stream: c.stream,
			Body:   post,
		})
	}
	return items
}

// Ack acknowledges processed entries in bulk. Entries are not deleted:
// other consumer groups may still need them, and the ingester caps the
// stream length on write.
func (c *Client) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.rdb.XAck(ctx, c.stream, c.group, ids...).Err(); err != nil {
		return fmt.Errorf("xack failed for %d entries: %w", len(ids), err)
	}
	return nil
}

// Pending lists the group's pending entries for observability.
func (c *Client) Pending(ctx context.Context, limit int64) ([]message.PendingEntry, error) {
	if limit <= 0 {
		limit = c.batchSize
	}
	pending, err := c.pendingEntries(ctx, 0, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]message.PendingEntry, 0, len(pending))
	for _, p := range pending {
		entries = append(entries, message.PendingEntry{
			ID:            p.ID,
			Consumer:      p.Consumer,
			DeliveryCount: p.RetryCount,
			Idle:          p.Idle,
		})
	}
	return entries, nil
}

// PendingCount returns the group's total pending entry count.
func (c *Client) PendingCount(ctx context.Context) (int64, error) {
	summary, err := c.rdb.XPending(ctx, c.stream, c.group).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("xpending summary failed: %w", err)
	}
	return summary.Count, nil
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis client connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}
