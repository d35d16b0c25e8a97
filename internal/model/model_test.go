package model

import (
	"testing"
	"time"
)

func TestPostFromValues(t *testing.T) {
	values := map[string]interface{}{
		"post_id":    "post_123456",
		"source":     "reddit",
		"content":    "Just tried Tesla Model 3",
		"author":     "daily_vibe",
		"created_at": "2026-08-23T10:00:00Z",
	}

	post, err := PostFromValues(values)
	if err != nil {
		t.Fatalf("PostFromValues failed: %v", err)
	}

	if post.PostID != "post_123456" {
		t.Errorf("PostID = %s; want post_123456", post.PostID)
	}
	if post.Source != "reddit" {
		t.Errorf("Source = %s; want reddit", post.Source)
	}
	if post.Author != "daily_vibe" {
		t.Errorf("Author = %s; want daily_vibe", post.Author)
	}
	want := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	if !post.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v; want %v", post.CreatedAt, want)
	}
}

func TestPostFromValues_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{"empty map", map[string]interface{}{}},
		{"missing content", map[string]interface{}{
			"post_id":    "post_1",
			"source":     "twitter",
			"author":     "user_99",
			"created_at": "2026-08-23T10:00:00Z",
		}},
		{"empty content", map[string]interface{}{
			"post_id":    "post_1",
			"source":     "twitter",
			"content":    "",
			"author":     "user_99",
			"created_at": "2026-08-23T10:00:00Z",
		}},
		{"non-string field", map[string]interface{}{
			"post_id":    42,
			"source":     "twitter",
			"content":    "text",
			"author":     "user_99",
			"created_at": "2026-08-23T10:00:00Z",
		}},
		{"bad timestamp", map[string]interface{}{
			"post_id":    "post_1",
			"source":     "twitter",
			"content":    "text",
			"author":     "user_99",
			"created_at": "yesterday",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PostFromValues(tt.values); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParsePostTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2026-08-23T10:00:00Z", time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)},
		{"fractional seconds", "2026-08-23T10:00:00.123456Z", time.Date(2026, 8, 23, 10, 0, 0, 123456000, time.UTC)},
		{"numeric offset", "2026-08-23T12:00:00+02:00", time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)},
		// Some publishers append Z after an isoformat offset.
		{"offset plus trailing z", "2026-08-23T10:00:00.500000+00:00Z", time.Date(2026, 8, 23, 10, 0, 0, 500000000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePostTime(tt.input)
			if err != nil {
				t.Fatalf("ParsePostTime(%q) failed: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParsePostTime(%q) = %v; want %v", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParsePostTime("not-a-time"); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

func TestDefaultVerdict(t *testing.T) {
	v := DefaultVerdict()
	if v.SentimentLabel != SentimentNeutral {
		t.Errorf("SentimentLabel = %s; want neutral", v.SentimentLabel)
	}
	if v.Confidence != 0.5 {
		t.Errorf("Confidence = %f; want 0.5", v.Confidence)
	}
	if v.Emotion != EmotionNeutral {
		t.Errorf("Emotion = %s; want neutral", v.Emotion)
	}
	if v.ModelName != DefaultModelName {
		t.Errorf("ModelName = %s; want default", v.ModelName)
	}
}

func TestVerdictNormalized(t *testing.T) {
	v := Verdict{
		SentimentLabel: "POSITIVE",
		Confidence:     1.7,
		Emotion:        "disgust",
		ModelName:      "llama-3.1-8b-instant",
	}.Normalized()

	if v.SentimentLabel != SentimentPositive {
		t.Errorf("SentimentLabel = %s; want positive", v.SentimentLabel)
	}
	if v.Confidence != 1.0 {
		t.Errorf("Confidence = %f; want 1.0", v.Confidence)
	}
	if v.Emotion != EmotionNeutral {
		t.Errorf("Emotion = %s; want neutral (disgust is outside the canonical set)", v.Emotion)
	}
}

func TestNormalizeSentiment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"positive", SentimentPositive},
		{"negative", SentimentNegative},
		{"neutral", SentimentNeutral},
		{"NEGATIVE", SentimentNegative},
		{" positive ", SentimentPositive},
		{"mixed", SentimentNeutral},
		{"", SentimentNeutral},
	}

	for _, tt := range tests {
		if got := NormalizeSentiment(tt.input); got != tt.want {
			t.Errorf("NormalizeSentiment(%q) = %s; want %s", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeEmotion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"joy", EmotionJoy},
		{"sadness", EmotionSadness},
		{"anger", EmotionAnger},
		{"fear", EmotionFear},
		{"surprise", EmotionSurprise},
		{"neutral", EmotionNeutral},
		{"disgust", EmotionNeutral},
		{"Excitement", EmotionNeutral},
		{"", EmotionNeutral},
	}

	for _, tt := range tests {
		if got := NormalizeEmotion(tt.input); got != tt.want {
			t.Errorf("NormalizeEmotion(%q) = %s; want %s", tt.input, got, tt.want)
		}
	}
}

func TestSentimentCounts(t *testing.T) {
	tests := []struct {
		name      string
		counts    SentimentCounts
		wantTotal int
		wantRatio float64
	}{
		{"trigger scenario", SentimentCounts{Positive: 1, Negative: 3, Neutral: 1}, 5, 0.6},
		{"calm scenario", SentimentCounts{Positive: 5, Negative: 2, Neutral: 3}, 10, 0.2},
		{"empty window", SentimentCounts{}, 0, 0},
		{"all negative", SentimentCounts{Negative: 4}, 4, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.counts.Total(); got != tt.wantTotal {
				t.Errorf("Total() = %d; want %d", got, tt.wantTotal)
			}
			if got := tt.counts.NegativeRatio(); got != tt.wantRatio {
				t.Errorf("NegativeRatio() = %f; want %f", got, tt.wantRatio)
			}
		})
	}
}

func TestDetailsFor(t *testing.T) {
	details := DetailsFor(SentimentCounts{Positive: 1, Negative: 3, Neutral: 1})

	if details.PositiveCount != 1 || details.NegativeCount != 3 || details.NeutralCount != 1 {
		t.Errorf("unexpected counts: %+v", details)
	}
	if details.TotalCount != 5 {
		t.Errorf("TotalCount = %d; want 5", details.TotalCount)
	}
}
