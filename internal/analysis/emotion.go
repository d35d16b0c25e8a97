package analysis

import (
	"strings"
	"unicode"

	"github.com/streamsense/sentiment-worker/internal/model"
)

// emotionLexicon maps trigger words to the emotion they signal. Tuned
// for short social media posts; anything unmatched reads as neutral.
var emotionLexicon = map[string]string{
	// joy
	"love":       model.EmotionJoy,
	"loving":     model.EmotionJoy,
	"loved":      model.EmotionJoy,
	"amazing":    model.EmotionJoy,
	"awesome":    model.EmotionJoy,
	"great":      model.EmotionJoy,
	"fantastic":  model.EmotionJoy,
	"excellent":  model.EmotionJoy,
	"happy":      model.EmotionJoy,
	"excited":    model.EmotionJoy,
	"best":       model.EmotionJoy,
	"wonderful":  model.EmotionJoy,
	"incredible": model.EmotionJoy,
	"delighted":  model.EmotionJoy,
	"thrilled":   model.EmotionJoy,

	// sadness
	"sad":           model.EmotionSadness,
	"unhappy":       model.EmotionSadness,
	"disappointed":  model.EmotionSadness,
	"disappointing": model.EmotionSadness,
	"crying":        model.EmotionSadness,
	"miss":          model.EmotionSadness,
	"missing":       model.EmotionSadness,
	"regret":        model.EmotionSadness,
	"heartbroken":   model.EmotionSadness,
	"depressing":    model.EmotionSadness,

	// anger
	"angry":        model.EmotionAnger,
	"furious":      model.EmotionAnger,
	"hate":         model.EmotionAnger,
	"hated":        model.EmotionAnger,
	"terrible":     model.EmotionAnger,
	"awful":        model.EmotionAnger,
	"worst":        model.EmotionAnger,
	"garbage":      model.EmotionAnger,
	"scam":         model.EmotionAnger,
	"ridiculous":   model.EmotionAnger,
	"unacceptable": model.EmotionAnger,
	"broken":       model.EmotionAnger,

	// fear
	"afraid":    model.EmotionFear,
	"scared":    model.EmotionFear,
	"scary":     model.EmotionFear,
	"worried":   model.EmotionFear,
	"worrying":  model.EmotionFear,
	"terrified": model.EmotionFear,
	"anxious":   model.EmotionFear,
	"nervous":   model.EmotionFear,
	"dangerous": model.EmotionFear,

	// surprise
	"wow":          model.EmotionSurprise,
	"unexpected":   model.EmotionSurprise,
	"surprised":    model.EmotionSurprise,
	"surprising":   model.EmotionSurprise,
	"unbelievable": model.EmotionSurprise,
	"shocked":      model.EmotionSurprise,
	"shocking":     model.EmotionSurprise,
	"suddenly":     model.EmotionSurprise,
}

// Tie-break order when two emotions score the same count.
var emotionPriority = []string{
	model.EmotionJoy,
	model.EmotionSadness,
	model.EmotionAnger,
	model.EmotionFear,
	model.EmotionSurprise,
}

// scoreEmotion picks the emotion with the most lexicon hits. Texts too
// short to carry a signal read as neutral.
func scoreEmotion(content string) string {
	if len(content) < 10 {
		return model.EmotionNeutral
	}

	counts := make(map[string]int, len(emotionPriority))
	for _, token := range tokenize(content) {
		if emotion, ok := emotionLexicon[token]; ok {
			counts[emotion]++
		}
	}

	best := model.EmotionNeutral
	bestCount := 0
	for _, emotion := range emotionPriority {
		if counts[emotion] > bestCount {
			best = emotion
			bestCount = counts[emotion]
		}
	}
	return best
}

func tokenize(content string) []string {
	return strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
