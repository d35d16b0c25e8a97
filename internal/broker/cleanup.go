package broker

import (
	"context"
	"fmt"
	"time"
)

// CleanupDeadConsumers removes consumers from the group that have been
// idle longer than idleTimeout. The claim cycle runs on a shorter
// interval, so a dead consumer's pending entries are rescued before its
// registration is dropped here.
func (c *Client) CleanupDeadConsumers(ctx context.Context, idleTimeout time.Duration) error {
	consumers, err := c.rdb.XInfoConsumers(ctx, c.stream, c.group).Result()
	if err != nil {
		return fmt.Errorf("failed to get consumers info for stream %s: %w", c.stream, err)
	}

	removedCount := 0
	for _, consumer := range consumers {
		// Skip our own consumer
		if consumer.Name == c.consumer {
			continue
		}

		if consumer.Idle > idleTimeout {
			c.log.Info("Removing dead consumer %s from group %s (idle for %s)", consumer.Name, c.group, consumer.Idle)

			deleted, err := c.rdb.XGroupDelConsumer(ctx, c.stream, c.group, consumer.Name).Result()
			if err != nil {
				c.log.Error("Failed to delete consumer %s: %v", consumer.Name, err)
				continue
			}

			if deleted > 0 {
				c.log.Info("Deleted consumer %s (had %d pending entries)", consumer.Name, deleted)
			}
			removedCount++
		} else {
			c.log.Debug("Consumer %s is active (idle for %s)", consumer.Name, consumer.Idle)
		}
	}

	if removedCount > 0 {
		c.log.Info("Cleaned up %d dead consumers at %s", removedCount, time.Now().Format(time.RFC3339))
	}
	return nil
}
