// Package worker coordinates the stream to Postgres analysis pipeline.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/message"
	"github.com/streamsense/sentiment-worker/internal/metrics"
	"github.com/streamsense/sentiment-worker/internal/model"
)

// Broker is the consumer-group surface the pool drives.
type Broker interface {
	ReadBatch(ctx context.Context) (message.Batch[model.Post], error)
	ClaimIdle(ctx context.Context) (message.Batch[model.Post], error)
	Ack(ctx context.Context, ids ...string) error
	CleanupDeadConsumers(ctx context.Context, idleTimeout time.Duration) error
	PendingCount(ctx context.Context) (int64, error)
}

// Store persists analyzed batches.
type Store interface {
	SaveBatch(ctx context.Context, posts []model.Post, results []model.AnalysisResult) error
}

// Analyzer produces a verdict for post content.
type Analyzer interface {
	Analyze(ctx context.Context, content string) (model.Verdict, error)
}

// Sink receives events for batches that committed.
type Sink interface {
	ResultsPersisted(ctx context.Context, posts []model.Post, results []model.AnalysisResult) error
}

// Pool orchestrates the consume, claim and cleanup loops. Entries are
// acknowledged only after their batch commits, so a crash at any point
// redelivers instead of losing work.
type Pool struct {
	broker              Broker
	store               Store
	chain               Analyzer
	sink                Sink
	claimTicker         *time.Ticker
	cleanupTicker       *time.Ticker
	consumerIdleTimeout time.Duration
	errorBackoff        time.Duration
	ackTimeout          time.Duration
	analysisWorkers     int
	log                 *log.Logger
}

// New creates a worker pool over the given broker, store, analyzer
// chain and event sink.
func New(broker Broker, store Store, chain Analyzer, sink Sink, cfg *config.Config, logger *log.Logger) *Pool {
	return &Pool{
		broker:              broker,
		store:               store,
		chain:               chain,
		sink:                sink,
		claimTicker:         time.NewTicker(cfg.Redis.ClaimIdle),
		cleanupTicker:       time.NewTicker(cfg.Redis.CleanupInterval),
		consumerIdleTimeout: cfg.Redis.ConsumerIdleTimeout,
		errorBackoff:        cfg.Pipeline.ErrorBackoff,
		ackTimeout:          cfg.Pipeline.AckTimeout,
		analysisWorkers:     cfg.Pipeline.AnalysisWorkers,
		log:                 logger,
	}
}

// startLoop starts a loop goroutine and reports non-canceled errors
func (p *Pool) startLoop(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	loop func(context.Context) error,
	errCh chan<- error,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("%s loop error: %w", name, err)
		}
	}()
}

// Run starts the pool loops and blocks until the context is canceled
// or a loop fails.
func (p *Pool) Run(ctx context.Context) error {
	p.log.Info("Starting worker pool with %d analysis workers", p.analysisWorkers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 3) // consume, claim, cleanup

	p.startLoop(ctx, &wg, "consume", p.consumeLoop, errCh)
	p.startLoop(ctx, &wg, "claim", p.claimLoop, errCh)
	p.startLoop(ctx, &wg, "cleanup", p.cleanupLoop, errCh)

	select {
	case <-ctx.Done():
		p.log.Info("Shutting down worker pool")
		p.claimTicker.Stop()
		p.cleanupTicker.Stop()
		wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		p.log.Error("Worker pool error: %v", err)
		cancel()
		p.claimTicker.Stop()
		p.cleanupTicker.Stop()
		wg.Wait()
		return err
	}
}

// consumeLoop continuously pulls fresh batches from the stream.
func (p *Pool) consumeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch, err := p.broker.ReadBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Error("Failed to read batch: %v", err)
			time.Sleep(p.errorBackoff)
			continue
		}

		if len(batch.Items) == 0 {
			continue
		}

		p.log.Debug("Read %d posts from stream", len(batch.Items))
		metrics.PostsConsumed.WithLabelValues("read").Add(float64(len(batch.Items)))

		if err := p.processBatch(ctx, batch); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			time.Sleep(p.errorBackoff)
		}
	}
}

// claimLoop periodically claims idle entries left behind by dead or
// stalled consumers and runs them through the same pipeline.
func (p *Pool) claimLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.claimTicker.C:
			batch, err := p.broker.ClaimIdle(ctx)
			if err != nil {
				p.log.Error("Failed to claim idle posts: %v", err)
				continue
			}

			if len(batch.Items) == 0 {
				continue
			}

			p.log.Info("Claimed %d idle posts", len(batch.Items))
			metrics.PostsConsumed.WithLabelValues("claimed").Add(float64(len(batch.Items)))

			if err := p.processBatch(ctx, batch); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

// cleanupLoop periodically removes dead consumers from the group and
// refreshes the pending gauge.
func (p *Pool) cleanupLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.cleanupTicker.C:
			if err := p.broker.CleanupDeadConsumers(ctx, p.consumerIdleTimeout); err != nil {
				p.log.Error("Failed to cleanup dead consumers: %v", err)
			}
			p.refreshPendingGauge(ctx)
		}
	}
}

func (p *Pool) refreshPendingGauge(ctx context.Context) {
	count, err := p.broker.PendingCount(ctx)
	if err != nil {
		p.log.Debug("Failed to read pending count: %v", err)
		return
	}
	metrics.PendingEntries.Set(float64(count))
}

// processBatch runs one batch through analysis, persistence, ack and
// event emission. A non-nil return means nothing was acknowledged and
// the caller should back off before the next pull.
func (p *Pool) processBatch(ctx context.Context, batch message.Batch[model.Post]) error {
	posts, results, err := p.analyzeBatch(ctx, batch)
	if err != nil {
		// Canceled mid-analysis. Nothing was written; the entries stay
		// pending and redeliver after the claim-idle window.
		return err
	}

	if err := p.store.SaveBatch(ctx, posts, results); err != nil {
		metrics.PersistFailures.Inc()
		p.log.Error("Failed to persist batch of %d posts: %v", len(posts), err)
		return err
	}
	metrics.BatchesPersisted.Inc()

	// The batch is committed. Acknowledge and emit even when shutdown
	// has begun; the ack timeout bounds the drain.
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.ackTimeout)
	defer cancel()

	if err := p.broker.Ack(ackCtx, batch.IDs()...); err != nil {
		// Rows are committed, so redelivery only rewrites identical
		// results. Log and move on.
		p.log.Error("Failed to ack %d entries: %v", len(batch.Items), err)
	}

	if err := p.sink.ResultsPersisted(ackCtx, posts, results); err != nil {
		metrics.EventPublishFailures.Inc()
		p.log.Warn("Failed to publish result events: %v", err)
	}

	return nil
}

// analyzeBatch fans the batch out over the bounded analysis workers.
// Outputs are parallel to the batch: posts[i] produced results[i].
func (p *Pool) analyzeBatch(ctx context.Context, batch message.Batch[model.Post]) ([]model.Post, []model.AnalysisResult, error) {
	posts := make([]model.Post, len(batch.Items))
	results := make([]model.AnalysisResult, len(batch.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.analysisWorkers)
	for i := range batch.Items {
		i := i
		g.Go(func() error {
			post := batch.Items[i].Body
			start := time.Now()
			verdict, err := p.chain.Analyze(gctx, post.Content)
			if err != nil {
				return err
			}
			metrics.AnalysisDuration.WithLabelValues(verdict.ModelName).Observe(time.Since(start).Seconds())
			metrics.PostsAnalyzed.WithLabelValues(verdict.ModelName, verdict.SentimentLabel).Inc()

			posts[i] = post
			results[i] = verdict.ResultFor(post.PostID, time.Now().UTC())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return posts, results, nil
}

// Close stops the pool tickers.
func (p *Pool) Close() error {
	p.claimTicker.Stop()
	p.cleanupTicker.Stop()
	return nil
}
