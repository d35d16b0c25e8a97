package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamsense/sentiment-worker/internal/model"
)

func TestParseVerdict(t *testing.T) {
	const modelName = "llama-3.1-8b-instant"

	tests := []struct {
		name    string
		content string
		want    model.Verdict
	}{
		{
			name:    "bare object",
			content: `{"label": "positive", "confidence": 0.92, "emotion": "joy"}`,
			want: model.Verdict{
				SentimentLabel: model.SentimentPositive,
				Confidence:     0.92,
				Emotion:        model.EmotionJoy,
				ModelName:      modelName,
			},
		},
		{
			name:    "json fence",
			content: "```json\n{\"label\": \"negative\", \"confidence\": 0.8, \"emotion\": \"anger\"}\n```",
			want: model.Verdict{
				SentimentLabel: model.SentimentNegative,
				Confidence:     0.8,
				Emotion:        model.EmotionAnger,
				ModelName:      modelName,
			},
		},
		{
			name:    "anonymous fence",
			content: "```\n{\"label\": \"neutral\", \"confidence\": 0.5, \"emotion\": \"neutral\"}\n```",
			want: model.Verdict{
				SentimentLabel: model.SentimentNeutral,
				Confidence:     0.5,
				Emotion:        model.EmotionNeutral,
				ModelName:      modelName,
			},
		},
		{
			name:    "object embedded in prose",
			content: `Sure! The analysis is {"label": "negative", "confidence": 0.7, "emotion": "sadness"} based on the wording.`,
			want: model.Verdict{
				SentimentLabel: model.SentimentNegative,
				Confidence:     0.7,
				Emotion:        model.EmotionSadness,
				ModelName:      modelName,
			},
		},
		{
			name:    "fence after prose",
			content: "Here you go:\n```json\n{\"label\": \"positive\", \"confidence\": 0.95, \"emotion\": \"joy\"}\n```",
			want: model.Verdict{
				SentimentLabel: model.SentimentPositive,
				Confidence:     0.95,
				Emotion:        model.EmotionJoy,
				ModelName:      modelName,
			},
		},
		{
			name:    "missing confidence uses default",
			content: `{"label": "negative", "emotion": "fear"}`,
			want: model.Verdict{
				SentimentLabel: model.SentimentNegative,
				Confidence:     defaultConfidence,
				Emotion:        model.EmotionFear,
				ModelName:      modelName,
			},
		},
		{
			name:    "unknown label reads as neutral",
			content: `{"label": "mixed", "confidence": 0.6, "emotion": "joy"}`,
			want: model.Verdict{
				SentimentLabel: model.SentimentNeutral,
				Confidence:     0.6,
				Emotion:        model.EmotionJoy,
				ModelName:      modelName,
			},
		},
		{
			name:    "unsupported emotion reads as neutral",
			content: `{"label": "negative", "confidence": 0.9, "emotion": "disgust"}`,
			want: model.Verdict{
				SentimentLabel: model.SentimentNegative,
				Confidence:     0.9,
				Emotion:        model.EmotionNeutral,
				ModelName:      modelName,
			},
		},
		{
			name:    "mixed case values",
			content: `{"label": "Positive", "confidence": 0.9, "emotion": "JOY"}`,
			want: model.Verdict{
				SentimentLabel: model.SentimentPositive,
				Confidence:     0.9,
				Emotion:        model.EmotionJoy,
				ModelName:      modelName,
			},
		},
		{
			name:    "confidence clamps into range",
			content: `{"label": "positive", "confidence": 1.5, "emotion": "joy"}`,
			want: model.Verdict{
				SentimentLabel: model.SentimentPositive,
				Confidence:     1,
				Emotion:        model.EmotionJoy,
				ModelName:      modelName,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerdict(tt.content, modelName)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseVerdictErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "prose only",
			content: "The sentiment is positive with high confidence.",
			wantMsg: "no JSON object",
		},
		{
			name:    "empty response",
			content: "",
			wantMsg: "no JSON object",
		},
		{
			name:    "broken json",
			content: `{label: positive}`,
			wantMsg: "malformed JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseVerdict(tt.content, "llama-3.1-8b-instant")
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSnippetTruncatesLongResponses(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "abcdefghij"
	}

	_, err := parseVerdict(long, "llama-3.1-8b-instant")
	require.Error(t, err)
	require.Less(t, len(err.Error()), 200)
}
