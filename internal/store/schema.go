package store

// Embedded DDL applied by EnsureSchema. Every statement is IF NOT
// EXISTS so a fleet of workers can race the bootstrap without failing.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS social_media_posts (
		id          BIGSERIAL PRIMARY KEY,
		post_id     VARCHAR(255) NOT NULL UNIQUE,
		source      VARCHAR(50)  NOT NULL,
		content     TEXT         NOT NULL,
		author      VARCHAR(255) NOT NULL,
		created_at  TIMESTAMPTZ  NOT NULL,
		ingested_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_source ON social_media_posts (source)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON social_media_posts (created_at)`,

	`CREATE TABLE IF NOT EXISTS sentiment_analysis (
		id               BIGSERIAL PRIMARY KEY,
		post_id          VARCHAR(255) NOT NULL REFERENCES social_media_posts (post_id),
		model_name       VARCHAR(100) NOT NULL,
		sentiment_label  VARCHAR(20)  NOT NULL,
		confidence_score DOUBLE PRECISION NOT NULL,
		emotion          VARCHAR(50),
		analyzed_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		UNIQUE (post_id, model_name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_analyzed_at ON sentiment_analysis (analyzed_at)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_label ON sentiment_analysis (sentiment_label)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_emotion ON sentiment_analysis (emotion)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_label_time ON sentiment_analysis (sentiment_label, analyzed_at)`,

	`CREATE TABLE IF NOT EXISTS sentiment_alerts (
		id              BIGSERIAL PRIMARY KEY,
		alert_type      VARCHAR(50) NOT NULL,
		threshold_value DOUBLE PRECISION NOT NULL,
		actual_value    DOUBLE PRECISION NOT NULL,
		window_start    TIMESTAMPTZ NOT NULL,
		window_end      TIMESTAMPTZ NOT NULL,
		post_count      INTEGER NOT NULL,
		triggered_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		details         JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_triggered_at ON sentiment_alerts (triggered_at)`,
}
