package analysis

import (
	"context"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/jonreiter/govader"
	"golang.org/x/sync/errgroup"

	"github.com/streamsense/sentiment-worker/internal/model"
)

const localModelName = "local-vader"

// VADER compound scores inside (-neutralBand, neutralBand) read as neutral.
const neutralBand = 0.05

// The lexicon scorers see at most this many bytes of a post.
const localMaxChars = 512

// Local scores sentiment with the VADER lexicon and emotion with a
// compact keyword lexicon. Both scorers run concurrently and share the
// configured timeout.
type Local struct {
	vader   *govader.SentimentIntensityAnalyzer
	timeout time.Duration
}

// NewLocal builds the local tier. The VADER lexicon is loaded once and
// shared by all workers.
func NewLocal(timeout time.Duration) *Local {
	return &Local{
		vader:   govader.NewSentimentIntensityAnalyzer(),
		timeout: timeout,
	}
}

// Name returns the provenance recorded by the local tier.
func (l *Local) Name() string { return localModelName }

// Analyze runs both scorers against the post text. A timeout or scorer
// failure returns an error so the chain escalates.
func (l *Local) Analyze(ctx context.Context, content string) (model.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	text := truncate(content, localMaxChars)

	var (
		label      string
		confidence float64
		emotion    string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scores := l.vader.PolarityScores(text)
		label, confidence = labelFromCompound(scores.Compound)
		return gctx.Err()
	})
	g.Go(func() error {
		emotion = scoreEmotion(text)
		return gctx.Err()
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case <-ctx.Done():
		return model.Verdict{}, fmt.Errorf("local analysis timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return model.Verdict{}, fmt.Errorf("local analysis failed: %w", err)
		}
	}

	return model.Verdict{
		SentimentLabel: label,
		Confidence:     confidence,
		Emotion:        emotion,
		ModelName:      localModelName,
	}, nil
}

// labelFromCompound maps a VADER compound score in [-1, 1] onto a label
// and confidence. Polar labels use the compound strength; neutral
// confidence grows as the score approaches zero.
func labelFromCompound(compound float64) (string, float64) {
	switch {
	case compound >= neutralBand:
		return model.SentimentPositive, model.ClampConfidence(compound)
	case compound <= -neutralBand:
		return model.SentimentNegative, model.ClampConfidence(-compound)
	default:
		return model.SentimentNeutral, model.ClampConfidence(1 - math.Abs(compound))
	}
}

// truncate bounds text to max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for i := max; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return s[:i]
		}
	}
	return s[:max]
}
