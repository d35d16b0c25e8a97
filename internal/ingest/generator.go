// Package ingest generates simulated social media posts and publishes
// them to the stream at a fixed rate.
package ingest

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/streamsense/sentiment-worker/internal/model"
)

var (
	products = []string{"iPhone 16", "Tesla Model 3", "ChatGPT", "Netflix", "Amazon Prime"}
	authors  = []string{"tech_guru", "daily_vibe", "user_99", "reviewer_pro", "anonymous_user"}
	sources  = []string{"reddit", "twitter"}
)

var templates = map[string][]string{
	model.SentimentPositive: {
		"I absolutely love {product}!",
		"This is amazing!",
		"{product} exceeded my expectations!",
	},
	model.SentimentNegative: {
		"Very disappointed with {product}",
		"Terrible experience",
		"Would not recommend {product}",
	},
	model.SentimentNeutral: {
		"Just tried {product}",
		"Received {product} today",
		"Using {product} for the first time",
	},
}

// Generator produces simulated posts. Not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from the clock.
func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Post generates one post. The sentiment mix is roughly 40% positive,
// 30% neutral, 30% negative.
func (g *Generator) Post() model.Post {
	sentiment := g.rollSentiment()
	product := products[g.rng.Intn(len(products))]
	tmpl := templates[sentiment][g.rng.Intn(len(templates[sentiment]))]

	return model.Post{
		PostID:    fmt.Sprintf("post_%d", g.rng.Uint32()),
		Source:    sources[g.rng.Intn(len(sources))],
		Content:   strings.ReplaceAll(tmpl, "{product}", product),
		Author:    authors[g.rng.Intn(len(authors))],
		CreatedAt: time.Now().UTC(),
	}
}

func (g *Generator) rollSentiment() string {
	roll := g.rng.Float64()
	switch {
	case roll < 0.40:
		return model.SentimentPositive
	case roll < 0.70:
		return model.SentimentNeutral
	default:
		return model.SentimentNegative
	}
}
