package insight

import (
	"context"
	"strings"
	"time"

	"github.com/anatolykoptev/go_insight/internal/engine"
	"github.com/anatolykoptev/go_insight/internal/engine/sources"
)

// TranscriptProvider returns timed caption segments for a canonical video ID.
type TranscriptProvider interface {
	Fetch(ctx context.Context, videoID string) ([]engine.TimedSegment, error)
}

// TranscriptSource is the transcript adapter. It never retries.
type TranscriptSource struct {
	Provider TranscriptProvider
	Timeout  time.Duration // per call; 0 = engine.Cfg.FetchTimeout
}

// FetchTranscript accepts a URL or bare ID, extracts the canonical ID and
// fetches its segments in playback order.
func (s *TranscriptSource) FetchTranscript(ctx context.Context, ref string) (*engine.TranscriptDocument, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, engine.InvalidInput("a YouTube video URL or ID is required")
	}
	id, ok := sources.ExtractVideoID(ref)
	if !ok {
		return nil, engine.InvalidInput("could not find a YouTube video ID in %q", engine.TruncateRunes(ref, 120, "..."))
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOr(s.Timeout, engine.Cfg.FetchTimeout))
	defer cancel()

	segs, err := s.Provider.Fetch(ctx, id)
	if err != nil {
		return nil, engine.Upstream(err, "transcript source")
	}
	if len(segs) == 0 {
		return nil, engine.NewError(engine.KindNoTranscript, "No transcript available for this video.", nil)
	}
	return &engine.TranscriptDocument{VideoID: id, Segments: segs}, nil
}

func timeoutOr(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	if def > 0 {
		return def
	}
	return 20 * time.Second
}
