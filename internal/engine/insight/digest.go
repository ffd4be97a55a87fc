package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_insight/internal/engine"
)

// Digest is the output of the context builder.
type Digest struct {
	Text      string
	Truncated bool // raw input was head-truncated before generation
}

// DigestBuilder condenses raw text into a short digest.
type DigestBuilder struct {
	Generator       engine.TextGenerator
	MaxInputChars   int // runes forwarded to the generator; 0 = unlimited
	MaxOutputTokens int // hard cap on generated length
}

// NewDigestBuilder builds a DigestBuilder from engine.Cfg.
func NewDigestBuilder(gen engine.TextGenerator) *DigestBuilder {
	return &DigestBuilder{
		Generator:       gen,
		MaxInputChars:   engine.Cfg.MaxInputChars,
		MaxOutputTokens: engine.Cfg.DigestMaxTokens,
	}
}

// BuildDigest summarizes raw using the template for kind. Oversized input is
// head-truncated, never rejected. hint narrows the summary focus.
func (b *DigestBuilder) BuildDigest(ctx context.Context, raw, hint string, kind engine.SourceKind) (Digest, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Digest{}, engine.InvalidInput("there is no content to summarize")
	}

	text, truncated := engine.HeadTruncate(raw, b.MaxInputChars)
	if truncated {
		engine.IncrDigestTruncations()
		slog.Info("digest: input truncated",
			slog.Int("limit", b.MaxInputChars), slog.Int("bytes", len(raw)))
	}

	var out string
	err := engine.TrackOperation(ctx, "digest", func(ctx context.Context) error {
		var genErr error
		out, genErr = b.Generator.Generate(ctx, digestSystem, digestPrompt(kind, text, hint), b.MaxOutputTokens)
		return genErr
	})
	if err != nil {
		if engine.IsTimeout(err) {
			return Digest{}, engine.NewError(engine.KindUpstreamTimeout, "summary generation timed out", err)
		}
		return Digest{}, engine.NewError(engine.KindGenerationUnavailable, "could not generate a summary", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return Digest{}, engine.NewError(engine.KindGenerationUnavailable, "could not generate a summary", engine.ErrEmptyCompletion)
	}

	engine.IncrDigestsBuilt()
	return Digest{Text: out, Truncated: truncated}, nil
}

func digestPrompt(kind engine.SourceKind, text, hint string) string {
	focus := ""
	if hint = strings.TrimSpace(hint); hint != "" {
		focus = fmt.Sprintf(focusLine, hint)
	}
	if kind == engine.SourceVideo {
		return fmt.Sprintf(videoDigestPrompt, focus, text)
	}
	return fmt.Sprintf(webDigestPrompt, focus, text)
}
