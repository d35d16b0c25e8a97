package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/streamsense/sentiment-worker/internal/model"
)

// Models are told to answer with bare JSON but frequently wrap it in
// markdown fences or prose anyway. Extraction is lenient; anything
// without a JSON object in it is a hard failure.
var (
	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	anyObject  = regexp.MustCompile(`(?s)\{.*\}`)
)

// Confidence assumed when the model omits the field but the rest of the
// object is usable.
const defaultConfidence = 0.85

type rawVerdict struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
	Emotion    string   `json:"emotion"`
}

// parseVerdict decodes a chat completion into a verdict. Unknown label
// or emotion values normalize to neutral rather than failing; only a
// response with no decodable JSON object is an error.
func parseVerdict(content, modelName string) (model.Verdict, error) {
	payload, err := extractJSON(content)
	if err != nil {
		return model.Verdict{}, err
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return model.Verdict{}, fmt.Errorf("malformed JSON in response: %w", err)
	}

	confidence := defaultConfidence
	if raw.Confidence != nil {
		confidence = *raw.Confidence
	}

	verdict := model.Verdict{
		SentimentLabel: raw.Label,
		Confidence:     confidence,
		Emotion:        raw.Emotion,
		ModelName:      modelName,
	}
	return verdict.Normalized(), nil
}

func extractJSON(content string) (string, error) {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "```") {
		if m := fencedJSON.FindStringSubmatch(trimmed); m != nil {
			return m[1], nil
		}
		// Unbalanced fence; strip the markers and fall through.
		trimmed = strings.TrimSpace(stripFenceMarks(trimmed))
	}

	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	if m := anyObject.FindString(trimmed); m != "" {
		return m, nil
	}
	return "", fmt.Errorf("no JSON object in response %q", snippet(content, 120))
}

func stripFenceMarks(s string) string {
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSuffix(s, "```")
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
