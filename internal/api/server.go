// Package api exposes the read and health surface over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/message"
	"github.com/streamsense/sentiment-worker/internal/model"
	"github.com/streamsense/sentiment-worker/internal/store"
)

const (
	defaultPostsLimit    = 50
	maxPostsLimit        = 100
	defaultWindowHours   = 24
	maxWindowHours       = 168
	pendingListLimit     = 100
	healthCheckTimeout   = 5 * time.Second
	readHeaderTimeout    = 10 * time.Second
	shutdownDrainTimeout = 5 * time.Second
)

// Store is the read surface the API serves.
type Store interface {
	RecentPosts(ctx context.Context, limit int, source, sentiment string) ([]store.PostWithSentiment, error)
	SentimentDistribution(ctx context.Context, since time.Time) (model.SentimentCounts, map[string]int, error)
	Ping(ctx context.Context) error
}

// Broker is the stream observability surface.
type Broker interface {
	Pending(ctx context.Context, limit int64) ([]message.PendingEntry, error)
	PendingCount(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// Server serves the HTTP API. All endpoints are read-only; writes go
// through the stream.
type Server struct {
	store  Store
	broker Broker
	srv    *http.Server
	log    *log.Logger
}

// New creates the API server on the configured address.
func New(st Store, br Broker, cfg *config.APIConfig, logger *log.Logger) *Server {
	s := &Server{store: st, broker: br, log: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/healthz", s.health)
	router.GET("/api/posts", s.posts)
	router.GET("/api/sentiment/distribution", s.distribution)
	router.GET("/api/stream/pending", s.pending)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.srv = &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Run serves until the context is canceled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("API server listening on %s", s.srv.Addr)

	select {
	case <-ctx.Done():
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownDrainTimeout)
		defer cancel()
		if err := s.srv.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("api server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("api server failed: %w", err)
	}
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// health reports per-dependency connectivity. Degraded still answers
// 200 so one lost dependency does not get the process restarted.
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	services := gin.H{"database": "connected", "redis": "connected"}
	up := 2
	if err := s.store.Ping(ctx); err != nil {
		s.log.Debug("Health check: database unreachable: %v", err)
		services["database"] = "disconnected"
		up--
	}
	if err := s.broker.Ping(ctx); err != nil {
		s.log.Debug("Health check: redis unreachable: %v", err)
		services["redis"] = "disconnected"
		up--
	}

	status := http.StatusOK
	overall := "healthy"
	switch up {
	case 1:
		overall = "degraded"
	case 0:
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
	})
}

type postSentiment struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Emotion    string    `json:"emotion"`
	ModelName  string    `json:"model_name"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

type postResponse struct {
	PostID    string         `json:"post_id"`
	Source    string         `json:"source"`
	Content   string         `json:"content"`
	Author    string         `json:"author"`
	CreatedAt time.Time      `json:"created_at"`
	Sentiment *postSentiment `json:"sentiment"`
}

func toPostResponse(p store.PostWithSentiment) postResponse {
	out := postResponse{
		PostID:    p.PostID,
		Source:    p.Source,
		Content:   p.Content,
		Author:    p.Author,
		CreatedAt: p.CreatedAt,
	}
	if p.SentimentLabel.Valid {
		out.Sentiment = &postSentiment{
			Label:      p.SentimentLabel.String,
			Confidence: p.Confidence.Float64,
			Emotion:    p.Emotion.String,
			ModelName:  p.ModelName.String,
			AnalyzedAt: p.AnalyzedAt.Time,
		}
	}
	return out
}

func (s *Server) posts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPostsLimit)))
	if err != nil || limit < 1 || limit > maxPostsLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 1 and %d", maxPostsLimit)})
		return
	}
	source := c.Query("source")
	sentiment := c.Query("sentiment")

	posts, err := s.store.RecentPosts(c.Request.Context(), limit, source, sentiment)
	if err != nil {
		s.log.Error("Failed to list posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list posts"})
		return
	}

	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": out,
		"count": len(out),
		"limit": limit,
		"filters": gin.H{
			"source":    source,
			"sentiment": sentiment,
		},
	})
}

func (s *Server) distribution(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", strconv.Itoa(defaultWindowHours)))
	if err != nil || hours < 1 || hours > maxWindowHours {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("hours must be between 1 and %d", maxWindowHours)})
		return
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	counts, emotions, err := s.store.SentimentDistribution(c.Request.Context(), since)
	if err != nil {
		s.log.Error("Failed to compute distribution: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute distribution"})
		return
	}

	total := counts.Total()
	c.JSON(http.StatusOK, gin.H{
		"timeframe_hours": hours,
		"distribution": gin.H{
			"positive": counts.Positive,
			"negative": counts.Negative,
			"neutral":  counts.Neutral,
		},
		"total": total,
		"percentages": gin.H{
			"positive": percentage(counts.Positive, total),
			"negative": percentage(counts.Negative, total),
			"neutral":  percentage(counts.Neutral, total),
		},
		"emotions": emotions,
	})
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

type pendingResponse struct {
	ID            string `json:"id"`
	Consumer      string `json:"consumer"`
	DeliveryCount int64  `json:"delivery_count"`
	IdleMs        int64  `json:"idle_ms"`
}

func (s *Server) pending(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := s.broker.PendingCount(ctx)
	if err != nil {
		s.log.Error("Failed to inspect pending entries: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to inspect stream"})
		return
	}

	entries, err := s.broker.Pending(ctx, pendingListLimit)
	if err != nil {
		s.log.Error("Failed to list pending entries: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to inspect stream"})
		return
	}

	out := make([]pendingResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, pendingResponse{
			ID:            e.ID,
			Consumer:      e.Consumer,
			DeliveryCount: e.DeliveryCount,
			IdleMs:        e.Idle.Milliseconds(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   count,
		"entries": out,
	})
}
