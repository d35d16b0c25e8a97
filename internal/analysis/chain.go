// Package analysis implements the tiered sentiment pipeline: a local
// lexicon tier, an external LLM tier and a terminal default. The chain
// escalates on tier failure and always produces a verdict.
package analysis

import (
	"context"

	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/model"
)

// Analyzer is one classification tier.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, content string) (model.Verdict, error)
}

// Chain runs analyzers in order and returns the first verdict. Each
// verdict carries the model name of the tier that produced it.
type Chain struct {
	tiers []Analyzer
	log   *log.Logger
}

// NewChain builds a chain over the given tiers, tried in order.
func NewChain(logger *log.Logger, tiers ...Analyzer) *Chain {
	return &Chain{tiers: tiers, log: logger}
}

// Analyze escalates through the tiers. The only error that propagates
// is cancellation of the caller's context; with the default tier
// installed every other failure still yields a verdict.
func (c *Chain) Analyze(ctx context.Context, content string) (model.Verdict, error) {
	for _, tier := range c.tiers {
		if err := ctx.Err(); err != nil {
			return model.Verdict{}, err
		}

		verdict, err := tier.Analyze(ctx, content)
		if err != nil {
			if ctx.Err() != nil {
				return model.Verdict{}, ctx.Err()
			}
			c.log.Debug("Analyzer %s escalating: %v", tier.Name(), err)
			continue
		}
		return verdict.Normalized(), nil
	}

	// Only reachable when the chain was built without the default tier
	return model.DefaultVerdict(), nil
}

// Default is the terminal tier. It always succeeds.
type Default struct{}

// Name returns the provenance recorded by the default tier.
func (Default) Name() string { return model.DefaultModelName }

// Analyze returns the fixed neutral verdict.
func (Default) Analyze(context.Context, string) (model.Verdict, error) {
	return model.DefaultVerdict(), nil
}
