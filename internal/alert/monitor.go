// Package alert raises threshold alerts over sliding sentiment windows.
package alert

import (
	"context"
	"errors"
	"time"

	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/metrics"
	"github.com/streamsense/sentiment-worker/internal/model"
	"github.com/streamsense/sentiment-worker/internal/store"
)

// Store is the query and persistence surface the monitor uses.
type Store interface {
	SentimentCountsBetween(ctx context.Context, start, end time.Time) (model.SentimentCounts, error)
	InsertAlert(ctx context.Context, alert model.Alert) error
	LastAlertWindowStart(ctx context.Context) (time.Time, error)
}

// Sink receives alert events after the alert row is committed.
type Sink interface {
	AlertRaised(ctx context.Context, alert model.Alert) error
}

// Monitor periodically scans the recent window for a high negative
// ratio. It shares nothing with the worker pool except the store and
// the sink; a failed cycle is logged and skipped, never fatal.
type Monitor struct {
	store           Store
	sink            Sink
	interval        time.Duration
	window          time.Duration
	threshold       float64
	minPosts        int
	lastWindowStart time.Time
	log             *log.Logger
}

// New creates a monitor over the given store and sink.
func New(store Store, sink Sink, cfg *config.AlertConfig, logger *log.Logger) *Monitor {
	return &Monitor{
		store:     store,
		sink:      sink,
		interval:  cfg.Interval,
		window:    cfg.Window,
		threshold: cfg.NegativeRatioThreshold,
		minPosts:  cfg.MinPosts,
		log:       logger,
	}
}

// Run scans on the configured interval until the context is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	m.seed(ctx)
	m.log.Info("Starting alert monitor: window %s, threshold %.2f", m.window, m.threshold)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.scan(ctx)
		}
	}
}

// seed restores the last alerted window start so a restart inside an
// already-alerted window does not fire a duplicate.
func (m *Monitor) seed(ctx context.Context) {
	last, err := m.store.LastAlertWindowStart(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn("Could not restore last alert window: %v", err)
		}
		return
	}
	m.lastWindowStart = last
	m.log.Info("Restored last alert window start %s", last.Format(time.RFC3339))
}

// scan evaluates one window and raises at most one alert.
func (m *Monitor) scan(ctx context.Context) {
	end := time.Now().UTC()
	start := end.Add(-m.window)

	counts, err := m.store.SentimentCountsBetween(ctx, start, end)
	if err != nil {
		m.log.Error("Alert scan query failed: %v", err)
		return
	}

	total := counts.Total()
	if total == 0 {
		return
	}
	if total < m.minPosts {
		m.log.Debug("Alert scan: %d posts in window, below minimum %d", total, m.minPosts)
		return
	}

	ratio := counts.NegativeRatio()
	if ratio <= m.threshold {
		return
	}

	// Stay quiet while the window still overlaps the last alerted one;
	// the same burst of posts should not alert on every cycle.
	if start.Before(m.lastWindowStart.Add(m.window)) {
		m.log.Debug("Alert suppressed: window starting %s overlaps last alert", start.Format(time.RFC3339))
		return
	}

	alert := model.Alert{
		AlertType:      model.AlertTypeHighNegativeRatio,
		ThresholdValue: m.threshold,
		ActualValue:    ratio,
		WindowStart:    start,
		WindowEnd:      end,
		PostCount:      total,
		TriggeredAt:    time.Now().UTC(),
		Details:        model.DetailsFor(counts),
	}

	if err := m.store.InsertAlert(ctx, alert); err != nil {
		m.log.Error("Failed to persist alert: %v", err)
		return
	}
	m.lastWindowStart = start
	metrics.AlertsRaised.Inc()
	m.log.Warn("High negative ratio: %.2f over %d posts exceeds %.2f", ratio, total, m.threshold)

	if err := m.sink.AlertRaised(ctx, alert); err != nil {
		metrics.EventPublishFailures.Inc()
		m.log.Warn("Failed to publish alert event: %v", err)
	}
}
