package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/streamsense/sentiment-worker/internal/config"
	"github.com/streamsense/sentiment-worker/internal/log"
	"github.com/streamsense/sentiment-worker/internal/model"
)

// ErrUnavailable is returned when the external tier has no API key
// configured and cannot serve requests.
var ErrUnavailable = errors.New("analyzer unavailable")

const systemPrompt = "You are a precise text analysis assistant. " +
	"Respond with only valid JSON objects as requested."

// RetryPolicy bounds how hard the external tier tries before the chain
// escalates past it. MaxAttempts counts the first request.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func (p RetryPolicy) build() retrypolicy.RetryPolicy[string] {
	return retrypolicy.NewBuilder[string]().
		WithBackoff(p.BaseDelay, p.MaxDelay).
		WithMaxRetries(p.MaxAttempts - 1).
		WithJitterFactor(0.1).
		HandleIf(func(_ string, err error) bool {
			return isTransient(err)
		}).
		Build()
}

// External asks an OpenAI-compatible chat completion API for a combined
// sentiment and emotion verdict. Transient failures are retried with
// backoff; everything else escalates to the next tier.
type External struct {
	client    openai.Client
	modelName string
	available bool
	maxChars  int
	policy    retrypolicy.RetryPolicy[string]
	log       *log.Logger
}

// NewExternal builds the external tier from configuration. The SDK's
// own retry loop is disabled so the policy here is the only one
// deciding how many requests go out.
func NewExternal(cfg *config.AnalyzerConfig, logger *log.Logger) *External {
	policy := RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		MaxDelay:    cfg.RetryMaxDelay,
	}

	client := openai.NewClient(
		option.WithBaseURL(cfg.APIBaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.RequestTimeout),
	)

	return &External{
		client:    client,
		modelName: cfg.Model,
		available: cfg.APIKey != "",
		maxChars:  cfg.MaxPromptChars,
		policy:    policy.build(),
		log:       logger,
	}
}

func (e *External) Name() string {
	return e.modelName
}

// Analyze sends the post content to the completion API and decodes the
// JSON verdict. Parse failures are not retried; resending the same
// prompt to a model that just answered in prose rarely helps.
func (e *External) Analyze(ctx context.Context, content string) (model.Verdict, error) {
	if !e.available {
		return model.Verdict{}, ErrUnavailable
	}

	prompt := buildPrompt(truncate(content, e.maxChars))
	raw, err := failsafe.With(e.policy).WithContext(ctx).Get(func() (string, error) {
		return e.complete(ctx, prompt)
	})
	if err != nil {
		e.log.Warn("External analyzer %s giving up: %v", e.modelName, err)
		return model.Verdict{}, err
	}

	verdict, err := parseVerdict(raw, e.modelName)
	if err != nil {
		e.log.Warn("External analyzer %s returned unusable output: %v", e.modelName, err)
		return model.Verdict{}, err
	}
	return verdict, nil
}

func (e *External) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(e.modelName),
		Temperature: openai.Float(0.2),
		MaxTokens:   openai.Int(100),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("response has no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(text string) string {
	return "Analyze the sentiment and primary emotion of the following text " +
		"and respond with ONLY a valid JSON object in this exact format:\n" +
		`{"label": "positive|negative|neutral", "confidence": 0.85, ` +
		`"emotion": "joy|sadness|anger|fear|surprise|neutral"}` + "\n\n" +
		"Do not include any explanations, markdown formatting, or additional text. " +
		"Only return the JSON object.\n\nText to analyze:\n" + text
}

// isTransient reports whether a completion error is worth retrying.
// Rate limits, request timeouts, server errors, and transport failures
// are; unknown models, bad requests, and auth failures are not.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 408, apierr.StatusCode == 429:
			return true
		case apierr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	// Not an API error: DNS, connection reset, per-request timeout.
	return true
}
