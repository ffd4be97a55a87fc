package insight

import (
	"context"
	"strings"
	"time"

	"github.com/anatolykoptev/go_insight/internal/engine"
)

// ContentProxy retrieves raw text through an extraction/search proxy.
type ContentProxy interface {
	Fetch(ctx context.Context, mode engine.FetchMode, input string) (string, error)
}

// ContentFetcher is the content adapter. It never retries.
type ContentFetcher struct {
	Proxy   ContentProxy
	Timeout time.Duration // per call; 0 = engine.Cfg.FetchTimeout
}

// FetchContent validates mode and input before any network call. An empty
// proxy answer is an upstream failure, not a caller error.
func (f *ContentFetcher) FetchContent(ctx context.Context, mode, input string) (string, error) {
	src, err := WebSource(mode, input)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOr(f.Timeout, engine.Cfg.FetchTimeout))
	defer cancel()

	raw, err := f.Proxy.Fetch(ctx, src.Mode, src.Input)
	if err != nil {
		return "", engine.Upstream(err, "content proxy")
	}
	if strings.TrimSpace(raw) == "" {
		return "", engine.NewError(engine.KindUpstreamUnavailable, "the content proxy returned no content", nil)
	}
	return raw, nil
}
