package insight

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_insight/internal/engine"
	"github.com/anatolykoptev/go_insight/internal/engine/sources"
)

// Source names one ingestible piece of content.
// Build it with VideoSource or WebSource so Input is canonical.
type Source struct {
	Kind  engine.SourceKind
	Input string           // video ID, or URL/query for web sources
	Mode  engine.FetchMode // web sources only
}

// Ref is the stable key a ConversationContext is bound to.
func (s Source) Ref() string {
	if s.Kind == engine.SourceVideo {
		return "youtube:" + s.Input
	}
	return "web:" + string(s.Mode) + ":" + s.Input
}

// VideoSource resolves a video URL or bare ID. No I/O.
func VideoSource(ref string) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Source{}, engine.InvalidInput("a YouTube video URL or ID is required")
	}
	id, ok := sources.ExtractVideoID(ref)
	if !ok {
		return Source{}, engine.InvalidInput("could not find a YouTube video ID in %q", engine.TruncateRunes(ref, 120, "..."))
	}
	return Source{Kind: engine.SourceVideo, Input: id}, nil
}

// WebSource validates mode first, then input. No I/O.
func WebSource(mode, input string) (Source, error) {
	m, err := engine.ParseMode(strings.TrimSpace(mode))
	if err != nil {
		return Source{}, err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		if m == engine.ModeSearch {
			return Source{}, engine.InvalidInput("a search query is required")
		}
		return Source{}, engine.InvalidInput("a URL is required")
	}
	return Source{Kind: engine.SourceWeb, Input: input, Mode: m}, nil
}

// Material is the raw content loaded for a source.
// Doc is set for video sources only.
type Material struct {
	Raw string
	Doc *engine.TranscriptDocument
}

// MaterialLoader turns a Source into raw text.
type MaterialLoader interface {
	Load(ctx context.Context, src Source) (Material, error)
}

// Loader dispatches to the transcript or content adapter by source kind.
type Loader struct {
	Transcripts *TranscriptSource
	Content     *ContentFetcher
}

// Load fetches the raw text for src.
func (l *Loader) Load(ctx context.Context, src Source) (Material, error) {
	switch src.Kind {
	case engine.SourceVideo:
		doc, err := l.Transcripts.FetchTranscript(ctx, src.Input)
		if err != nil {
			return Material{}, err
		}
		return Material{Raw: doc.Text(), Doc: doc}, nil
	case engine.SourceWeb:
		raw, err := l.Content.FetchContent(ctx, string(src.Mode), src.Input)
		if err != nil {
			return Material{}, err
		}
		return Material{Raw: raw}, nil
	}
	return Material{}, engine.InvalidInput("unknown source kind %q", src.Kind)
}
