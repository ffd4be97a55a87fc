package sources

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_insight/internal/engine"
	"golang.org/x/time/rate"
)

// ContentProxy talks to a content-extraction proxy (r.jina.ai / s.jina.ai by
// default): ReaderURL+<url> returns a page as text, SearchURL+<query> returns
// web search results as text.
type ContentProxy struct {
	Client    *http.Client
	ReaderURL string
	SearchURL string
	APIKey    string
	limiter   *rate.Limiter
}

// maxProxyBody caps how much of a proxy response is read.
const maxProxyBody = 4 * 1024 * 1024

// NewContentProxy builds a proxy client from engine.Cfg.
func NewContentProxy() *ContentProxy {
	p := &ContentProxy{
		Client:    engine.Cfg.HTTPClient,
		ReaderURL: engine.Cfg.ReaderURL,
		SearchURL: engine.Cfg.SearchURL,
		APIKey:    engine.Cfg.ProxyAPIKey,
	}
	p.SetRateLimit(engine.Cfg.ProxyRPS)
	return p
}

// SetRateLimit limits outgoing requests per second. rps <= 0 disables the limit.
func (p *ContentProxy) SetRateLimit(rps float64) {
	if rps <= 0 {
		p.limiter = nil
		return
	}
	p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// TargetURL builds the proxy request URL. read passes input through
// verbatim; search path-escapes it.
func (p *ContentProxy) TargetURL(mode engine.FetchMode, input string) (string, error) {
	switch mode {
	case engine.ModeRead:
		return p.ReaderURL + input, nil
	case engine.ModeSearch:
		return p.SearchURL + url.PathEscape(input), nil
	}
	_, err := engine.ParseMode(string(mode))
	return "", err
}

// Fetch retrieves raw text for input. Non-2xx answers become fetch_failed
// carrying the upstream status; transport errors become upstream_*.
func (p *ContentProxy) Fetch(ctx context.Context, mode engine.FetchMode, input string) (string, error) {
	target, err := p.TargetURL(mode, input)
	if err != nil {
		return "", err
	}

	engine.IncrProxyRequests()
	text, err := p.get(ctx, target, input)
	if err != nil {
		engine.IncrProxyErrors()
		return "", err
	}
	return text, nil
}

func (p *ContentProxy) get(ctx context.Context, target, pageURL string) (string, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", engine.Upstream(err, "content proxy")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", engine.InvalidInput("invalid proxy target: %v", err)
	}
	req.Header.Set("Accept", "text/plain, text/markdown;q=0.9, text/html;q=0.8, */*;q=0.5")
	req.Header.Set("User-Agent", engine.UserAgentBot)
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", engine.Upstream(err, "content proxy")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := http.StatusText(resp.StatusCode)
		if snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256)); len(snippet) > 0 {
			reason = fmt.Sprintf("%s: %s", reason, engine.TruncateRunes(strings.TrimSpace(string(snippet)), 200, "..."))
		}
		return "", engine.FetchFailed(resp.StatusCode, reason)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBody))
	if err != nil {
		return "", engine.Upstream(err, "content proxy")
	}
	text := string(body)
	if isHTML(resp.Header.Get("Content-Type")) {
		text = extractHTML(text, pageURL)
	}
	return strings.TrimSpace(text), nil
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/html"
}
