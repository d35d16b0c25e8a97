// Package message provides the envelope types for stream entries and
// broker pending accounting.
package message

import "time"

// Stream is a strongly typed stream entry. ID is the broker-assigned
// entry id used for acknowledgment; the payload itself never carries it.
type Stream[T any] struct {
	ID     string
	Stream string
	Body   T
}

// Batch is an envelope returned by batch reads and idle claims.
type Batch[T any] struct {
	Items []Stream[T]
}

// IDs collects the broker ids of all items, in order.
func (b Batch[T]) IDs() []string {
	ids := make([]string, len(b.Items))
	for i := range b.Items {
		ids[i] = b.Items[i].ID
	}
	return ids
}

// PendingEntry is the broker's view of a delivered-but-unacknowledged
// entry. Read-only for consumers; used for claim and dead-letter
// decisions and for observability.
type PendingEntry struct {
	ID            string
	Consumer      string
	DeliveryCount int64
	Idle          time.Duration
}
