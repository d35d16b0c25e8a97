// Package model defines the domain types shared across the pipeline:
// posts read from the stream, analysis verdicts, persisted results,
// and alerts raised by the monitor.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Canonical sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Canonical emotion labels.
const (
	EmotionJoy      = "joy"
	EmotionSadness  = "sadness"
	EmotionAnger    = "anger"
	EmotionFear     = "fear"
	EmotionSurprise = "surprise"
	EmotionNeutral  = "neutral"
)

// DefaultModelName is the provenance recorded by the terminal analyzer tier.
const DefaultModelName = "default"

// Post is one ingested social media post. Immutable once ingested.
type Post struct {
	PostID    string
	Source    string
	Content   string
	Author    string
	CreatedAt time.Time
}

// PostFromValues decodes a stream entry's field map into a Post.
// All fields are required; created_at must be ISO-8601 / RFC3339.
func PostFromValues(values map[string]interface{}) (Post, error) {
	var p Post
	var err error

	if p.PostID, err = stringField(values, "post_id"); err != nil {
		return Post{}, err
	}
	if p.Source, err = stringField(values, "source"); err != nil {
		return Post{}, err
	}
	if p.Content, err = stringField(values, "content"); err != nil {
		return Post{}, err
	}
	if p.Author, err = stringField(values, "author"); err != nil {
		return Post{}, err
	}

	raw, err := stringField(values, "created_at")
	if err != nil {
		return Post{}, err
	}
	p.CreatedAt, err = ParsePostTime(raw)
	if err != nil {
		return Post{}, fmt.Errorf("invalid created_at %q: %w", raw, err)
	}

	return p, nil
}

// Values encodes the post as stream entry fields, the inverse of
// PostFromValues.
func (p Post) Values() map[string]interface{} {
	return map[string]interface{}{
		"post_id":    p.PostID,
		"source":     p.Source,
		"content":    p.Content,
		"author":     p.Author,
		"created_at": p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func stringField(values map[string]interface{}, key string) (string, error) {
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("field %q is empty or not a string", key)
	}
	return s, nil
}

// ParsePostTime parses an ISO-8601 timestamp. Some publishers append a
// literal Z after a numeric offset ("+00:00Z"); the trailing Z is
// dropped and the string re-parsed before giving up.
func ParsePostTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t.UTC(), nil
	}
	if strings.HasSuffix(s, "Z") {
		if t, retryErr := time.Parse(time.RFC3339Nano, strings.TrimSuffix(s, "Z")); retryErr == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// Verdict is the output of one analyzer tier.
type Verdict struct {
	SentimentLabel string
	Confidence     float64
	Emotion        string
	ModelName      string
}

// DefaultVerdict is the verdict of the terminal fallback tier.
func DefaultVerdict() Verdict {
	return Verdict{
		SentimentLabel: SentimentNeutral,
		Confidence:     0.5,
		Emotion:        EmotionNeutral,
		ModelName:      DefaultModelName,
	}
}

// Normalized clamps the verdict's labels and confidence to the
// canonical ranges.
func (v Verdict) Normalized() Verdict {
	v.SentimentLabel = NormalizeSentiment(v.SentimentLabel)
	v.Emotion = NormalizeEmotion(v.Emotion)
	v.Confidence = ClampConfidence(v.Confidence)
	return v
}

// ResultFor binds a verdict to a post at the given analysis time.
func (v Verdict) ResultFor(postID string, analyzedAt time.Time) AnalysisResult {
	return AnalysisResult{
		PostID:         postID,
		ModelName:      v.ModelName,
		SentimentLabel: v.SentimentLabel,
		Confidence:     v.Confidence,
		Emotion:        v.Emotion,
		AnalyzedAt:     analyzedAt,
	}
}

// AnalysisResult is a persisted classification for a post. At most one
// row exists per (PostID, ModelName); redelivery overwrites in place.
type AnalysisResult struct {
	PostID         string
	ModelName      string
	SentimentLabel string
	Confidence     float64
	Emotion        string
	AnalyzedAt     time.Time
}

// NormalizeSentiment maps any classifier output onto the canonical
// sentiment set, falling back to neutral.
func NormalizeSentiment(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// NormalizeEmotion maps any classifier output onto the canonical emotion
// set, falling back to neutral.
func NormalizeEmotion(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case EmotionJoy:
		return EmotionJoy
	case EmotionSadness:
		return EmotionSadness
	case EmotionAnger:
		return EmotionAnger
	case EmotionFear:
		return EmotionFear
	case EmotionSurprise:
		return EmotionSurprise
	default:
		return EmotionNeutral
	}
}

// ClampConfidence bounds a confidence score to [0, 1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SentimentCounts aggregates results by label over a window.
type SentimentCounts struct {
	Positive int
	Negative int
	Neutral  int
}

// Total is the number of results in the window.
func (c SentimentCounts) Total() int {
	return c.Positive + c.Negative + c.Neutral
}

// NegativeRatio is negative over total. An empty window has ratio 0, so
// the zero case never divides and never alerts.
func (c SentimentCounts) NegativeRatio() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c.Negative) / float64(total)
}

// AlertTypeHighNegativeRatio marks alerts raised by the negative-ratio
// threshold scan.
const AlertTypeHighNegativeRatio = "high_negative_ratio"

// Alert records a threshold breach over a sliding window. Append-only.
type Alert struct {
	AlertType      string
	ThresholdValue float64
	ActualValue    float64
	WindowStart    time.Time
	WindowEnd      time.Time
	PostCount      int
	TriggeredAt    time.Time
	Details        AlertDetails
}

// AlertDetails carries the label counts behind an alert.
type AlertDetails struct {
	PositiveCount int `json:"positive_count"`
	NegativeCount int `json:"negative_count"`
	NeutralCount  int `json:"neutral_count"`
	TotalCount    int `json:"total_count"`
}

// DetailsFor builds alert details from window counts.
func DetailsFor(c SentimentCounts) AlertDetails {
	return AlertDetails{
		PositiveCount: c.Positive,
		NegativeCount: c.Negative,
		NeutralCount:  c.Neutral,
		TotalCount:    c.Total(),
	}
}
