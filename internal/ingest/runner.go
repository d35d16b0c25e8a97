package ingest

import (
	"context"
	"time"

	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/model"
)

// Publisher pushes a post onto the stream and returns its entry ID.
type Publisher interface {
	Publish(ctx context.Context, post model.Post) (string, error)
}

// Runner emits generated posts at a fixed rate until its context is
// canceled.
type Runner struct {
	publisher Publisher
	generator *Generator
	interval  time.Duration
	log       *log.Logger
}

// NewRunner creates a runner publishing cfg.PostsPerMinute posts per
// minute.
func NewRunner(publisher Publisher, cfg *config.IngestConfig, logger *log.Logger) *Runner {
	return &Runner{
		publisher: publisher,
		generator: NewGenerator(),
		interval:  time.Minute / time.Duration(cfg.PostsPerMinute),
		log:       logger,
	}
}

// Run publishes posts on a steady interval. A failed publish is logged
// and the post dropped; the next tick starts fresh.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting ingester: one post every %s", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Ingester stopping: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			post := r.generator.Post()
			id, err := r.publisher.Publish(ctx, post)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.log.Error("Failed to publish post %s: %v", post.PostID, err)
				continue
			}
			r.log.Debug("Published post %s as stream entry %s", post.PostID, id)
		}
	}
}
