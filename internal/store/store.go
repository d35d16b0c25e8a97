// Package store persists posts, analysis results and alerts to
// PostgreSQL and serves the windowed aggregates behind alerting and the
// read API.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/model"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("record not found")

// Store wraps the PostgreSQL connection pool.
type Store struct {
	db  *sql.DB
	log *log.Logger
}

// Connect opens the pool, verifies the connection and applies the pool
// limits from the configuration.
func Connect(cfg *config.DatabaseConfig, logger *log.Logger) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Info("Database connected (pool %d open / %d idle, lifetime %s)",
		cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)

	return &Store{db: db, log: logger}, nil
}

// NewStore wraps an existing connection. Used by tests.
func NewStore(db *sql.DB, logger *log.Logger) *Store {
	return &Store{db: db, log: logger}
}

// EnsureSchema applies the embedded DDL.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	s.log.Info("Database schema ensured (%d statements)", len(schemaStatements))
	return nil
}

// SaveBatch writes a processed batch in one transaction: posts first
// (insert-only, a redelivered post is already present), then results
// keyed (post_id, model_name) so a redelivery overwrites in place.
func (s *Store) SaveBatch(ctx context.Context, posts []model.Post, results []model.AnalysisResult) error {
	if len(posts) == 0 && len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertPosts(ctx, tx, posts); err != nil {
		return err
	}
	if err := upsertResults(ctx, tx, dedupeResults(results)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func insertPosts(ctx context.Context, tx *sql.Tx, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO social_media_posts (post_id, source, content, author, created_at) VALUES `)
	args := make([]interface{}, 0, len(posts)*5)
	for i, p := range posts {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, p.PostID, p.Source, p.Content, p.Author, p.CreatedAt)
	}
	sb.WriteString(` ON CONFLICT (post_id) DO NOTHING`)

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert %d posts: %w", len(posts), err)
	}
	return nil
}

func upsertResults(ctx context.Context, tx *sql.Tx, results []model.AnalysisResult) error {
	if len(results) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO sentiment_analysis (post_id, model_name, sentiment_label, confidence_score, emotion, analyzed_at) VALUES `)
	args := make([]interface{}, 0, len(results)*6)
	for i, r := range results {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 6
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, r.PostID, r.ModelName, r.SentimentLabel, r.Confidence, r.Emotion, r.AnalyzedAt)
	}
	sb.WriteString(` ON CONFLICT (post_id, model_name) DO UPDATE SET
		sentiment_label = EXCLUDED.sentiment_label,
		confidence_score = EXCLUDED.confidence_score,
		emotion = EXCLUDED.emotion,
		analyzed_at = EXCLUDED.analyzed_at`)

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to upsert %d results: %w", len(results), err)
	}
	return nil
}

// dedupeResults keeps the last result per (post_id, model_name);
// Postgres rejects ON CONFLICT DO UPDATE hitting the same row twice in
// one statement.
func dedupeResults(results []model.AnalysisResult) []model.AnalysisResult {
	if len(results) < 2 {
		return results
	}
	type key struct{ post, modelName string }
	seen := make(map[key]int, len(results))
	out := make([]model.AnalysisResult, 0, len(results))
	for _, r := range results {
		k := key{r.PostID, r.ModelName}
		if i, ok := seen[k]; ok {
			out[i] = r
			continue
		}
		seen[k] = len(out)
		out = append(out, r)
	}
	return out
}

// SentimentCountsBetween aggregates results by label for posts created
// in [start, end).
func (s *Store) SentimentCountsBetween(ctx context.Context, start, end time.Time) (model.SentimentCounts, error) {
	const query = `
		SELECT r.sentiment_label, COUNT(*)
		FROM sentiment_analysis r
		JOIN social_media_posts p ON p.post_id = r.post_id
		WHERE p.created_at >= $1 AND p.created_at < $2
		GROUP BY r.sentiment_label`

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return model.SentimentCounts{}, fmt.Errorf("failed to query window counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts model.SentimentCounts
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return model.SentimentCounts{}, fmt.Errorf("failed to scan window counts: %w", err)
		}
		switch label {
		case model.SentimentPositive:
			counts.Positive = count
		case model.SentimentNegative:
			counts.Negative = count
		case model.SentimentNeutral:
			counts.Neutral = count
		}
	}
	return counts, rows.Err()
}

// PostWithSentiment is a post joined with its latest analysis. The
// sentiment columns are NULL until a worker has processed the post.
type PostWithSentiment struct {
	PostID         string
	Source         string
	Content        string
	Author         string
	CreatedAt      time.Time
	SentimentLabel sql.NullString
	Confidence     sql.NullFloat64
	Emotion        sql.NullString
	ModelName      sql.NullString
	AnalyzedAt     sql.NullTime
}

// RecentPosts returns the newest posts with their latest analysis.
// Empty source/sentiment filters match everything.
func (s *Store) RecentPosts(ctx context.Context, limit int, source, sentiment string) ([]PostWithSentiment, error) {
	const query = `
		SELECT p.post_id, p.source, p.content, p.author, p.created_at,
		       a.sentiment_label, a.confidence_score, a.emotion, a.model_name, a.analyzed_at
		FROM social_media_posts p
		LEFT JOIN LATERAL (
			SELECT sentiment_label, confidence_score, emotion, model_name, analyzed_at
			FROM sentiment_analysis
			WHERE post_id = p.post_id
			ORDER BY analyzed_at DESC
			LIMIT 1
		) a ON TRUE
		WHERE ($2 = '' OR p.source = $2)
		  AND ($3 = '' OR a.sentiment_label = $3)
		ORDER BY p.created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit, source, sentiment)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []PostWithSentiment
	for rows.Next() {
		var p PostWithSentiment
		if err := rows.Scan(
			&p.PostID, &p.Source, &p.Content, &p.Author, &p.CreatedAt,
			&p.SentimentLabel, &p.Confidence, &p.Emotion, &p.ModelName, &p.AnalyzedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// SentimentDistribution counts labels and emotions for results analyzed
// since the given time.
func (s *Store) SentimentDistribution(ctx context.Context, since time.Time) (model.SentimentCounts, map[string]int, error) {
	counts, err := s.labelCounts(ctx, since)
	if err != nil {
		return model.SentimentCounts{}, nil, err
	}
	emotions, err := s.emotionCounts(ctx, since)
	if err != nil {
		return model.SentimentCounts{}, nil, err
	}
	return counts, emotions, nil
}

func (s *Store) labelCounts(ctx context.Context, since time.Time) (model.SentimentCounts, error) {
	const query = `
		SELECT sentiment_label, COUNT(*)
		FROM sentiment_analysis
		WHERE analyzed_at >= $1
		GROUP BY sentiment_label`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return model.SentimentCounts{}, fmt.Errorf("failed to query label counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts model.SentimentCounts
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return model.SentimentCounts{}, fmt.Errorf("failed to scan label count: %w", err)
		}
		switch label {
		case model.SentimentPositive:
			counts.Positive = count
		case model.SentimentNegative:
			counts.Negative = count
		case model.SentimentNeutral:
			counts.Neutral = count
		}
	}
	return counts, rows.Err()
}

func (s *Store) emotionCounts(ctx context.Context, since time.Time) (map[string]int, error) {
	const query = `
		SELECT emotion, COUNT(*)
		FROM sentiment_analysis
		WHERE analyzed_at >= $1 AND emotion IS NOT NULL
		GROUP BY emotion`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	emotions := make(map[string]int)
	for rows.Next() {
		var emotion string
		var count int
		if err := rows.Scan(&emotion, &count); err != nil {
			return nil, fmt.Errorf("failed to scan emotion count: %w", err)
		}
		emotions[emotion] = count
	}
	return emotions, rows.Err()
}

// InsertAlert appends one alert row. Alerts are append-only.
func (s *Store) InsertAlert(ctx context.Context, alert model.Alert) error {
	details, err := json.Marshal(alert.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal alert details: %w", err)
	}

	const query = `
		INSERT INTO sentiment_alerts
			(alert_type, threshold_value, actual_value, window_start, window_end, post_count, triggered_at, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := s.db.ExecContext(ctx, query,
		alert.AlertType, alert.ThresholdValue, alert.ActualValue,
		alert.WindowStart, alert.WindowEnd, alert.PostCount, alert.TriggeredAt, details,
	); err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// LastAlertWindowStart returns the window start of the most recent
// alert, used to seed duplicate suppression across restarts. Returns
// ErrNotFound when no alerts exist.
func (s *Store) LastAlertWindowStart(ctx context.Context) (time.Time, error) {
	const query = `SELECT window_start FROM sentiment_alerts ORDER BY triggered_at DESC LIMIT 1`

	var ws time.Time
	err := s.db.QueryRowContext(ctx, query).Scan(&ws)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last alert: %w", err)
	}
	return ws, nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
