package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// TextGenerator is the generation capability used by the digest builder and
// the Q&A engine.
type TextGenerator interface {
	Generate(ctx context.Context, systemHint, userPrompt string, maxTokens int) (string, error)
}

// ErrEmptyCompletion is returned when the model answers with nothing usable.
var ErrEmptyCompletion = errors.New("empty completion")

// LLMGenerator adapts a go-kit llm.Client to TextGenerator.
type LLMGenerator struct {
	client      *llm.Client
	temperature float64
}

// NewLLMGenerator wraps client. Temperature applies to every call.
func NewLLMGenerator(client *llm.Client, temperature float64) *LLMGenerator {
	return &LLMGenerator{client: client, temperature: temperature}
}

// Generate sends one completion request bounded by Cfg.GenerateTimeout.
// The returned text is verbatim, markup and whitespace included.
func (g *LLMGenerator) Generate(ctx context.Context, systemHint, userPrompt string, maxTokens int) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("llm client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.GenerateTimeout)
	defer cancel()

	metrics.LLMCalls.Add(1)
	var resp string
	var err error
	if maxTokens > 0 {
		resp, err = g.client.Complete(ctx, systemHint, userPrompt,
			llm.WithChatTemperature(g.temperature),
			llm.WithChatMaxTokens(maxTokens),
		)
	} else {
		resp, err = g.client.Complete(ctx, systemHint, userPrompt,
			llm.WithChatTemperature(g.temperature),
		)
	}
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	if strings.TrimSpace(resp) == "" {
		metrics.LLMErrors.Add(1)
		return "", ErrEmptyCompletion
	}
	return resp, nil
}
