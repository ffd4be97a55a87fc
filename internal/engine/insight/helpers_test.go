package insight

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/anatolykoptev/go_insight/internal/engine"
	"github.com/anatolykoptev/go_insight/internal/engine/history"
)

// fakeProvider serves fixed segments and counts calls.
type fakeProvider struct {
	mu    sync.Mutex
	segs  []engine.TimedSegment
	err   error
	block bool // wait for ctx.Done
	ids   []string
}

func (p *fakeProvider) Fetch(ctx context.Context, videoID string) ([]engine.TimedSegment, error) {
	p.mu.Lock()
	p.ids = append(p.ids, videoID)
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return p.segs, p.err
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ids)
}

// fakeProxy serves fixed text and records requests.
type fakeProxy struct {
	mu    sync.Mutex
	text  string
	err   error
	modes []engine.FetchMode
}

func (p *fakeProxy) Fetch(_ context.Context, mode engine.FetchMode, _ string) (string, error) {
	p.mu.Lock()
	p.modes = append(p.modes, mode)
	p.mu.Unlock()
	return p.text, p.err
}

func (p *fakeProxy) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.modes)
}

// fakeGenerator answers digest and answer requests separately.
type fakeGenerator struct {
	mu            sync.Mutex
	digestPrompts []string
	answerPrompts []string
	maxTokens     []int
	digestFn      func(n int, prompt string) (string, error)
	answerFn      func(n int, prompt string) (string, error)
}

func (g *fakeGenerator) Generate(_ context.Context, system, prompt string, maxTokens int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.maxTokens = append(g.maxTokens, maxTokens)
	if system == digestSystem {
		g.digestPrompts = append(g.digestPrompts, prompt)
		n := len(g.digestPrompts)
		if g.digestFn != nil {
			return g.digestFn(n, prompt)
		}
		return fmt.Sprintf("digest #%d", n), nil
	}
	g.answerPrompts = append(g.answerPrompts, prompt)
	n := len(g.answerPrompts)
	if g.answerFn != nil {
		return g.answerFn(n, prompt)
	}
	return fmt.Sprintf("**answer** #%d", n), nil
}

func (g *fakeGenerator) digests() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.digestPrompts)
}

func (g *fakeGenerator) answers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.answerPrompts)
}

// fakeHistory records in memory or fails.
type fakeHistory struct {
	mu   sync.Mutex
	err  error
	rows []history.Interaction
}

func (h *fakeHistory) Record(_ context.Context, in history.Interaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.rows = append(h.rows, in)
	return nil
}

func (h *fakeHistory) List(_ context.Context, session string, _ int) ([]history.Interaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []history.Interaction
	for _, r := range h.rows {
		if r.Session == session {
			out = append(out, r)
		}
	}
	return out, h.err
}

func (h *fakeHistory) Close() error { return nil }

var testSegments = []engine.TimedSegment{
	{Text: "Welcome to the channel", OffsetMs: 0},
	{Text: "today we talk about Go", OffsetMs: 1500},
	{Text: "goroutines are cheap", OffsetMs: 61250},
	{Text: "and channels connect them", OffsetMs: 125900},
}

const testVideoID = "dQw4w9WgXcQ"

// pipeline wires a Service over fakes and a memory-only context store.
type pipeline struct {
	provider *fakeProvider
	proxy    *fakeProxy
	gen      *fakeGenerator
	store    *engine.ContextStore
	history  *fakeHistory
	conv     *Conversation
	svc      *Service
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	p := &pipeline{
		provider: &fakeProvider{segs: testSegments},
		proxy:    &fakeProxy{text: "Example Domain. This domain is for use in examples."},
		gen:      &fakeGenerator{},
		store:    engine.NewContextStore(nil, time.Hour, 0, time.Minute),
		history:  &fakeHistory{},
	}
	t.Cleanup(func() { p.store.Close() })

	transcripts := &TranscriptSource{Provider: p.provider, Timeout: time.Second}
	p.conv = &Conversation{
		Store: p.store,
		Loader: &Loader{
			Transcripts: transcripts,
			Content:     &ContentFetcher{Proxy: p.proxy, Timeout: time.Second},
		},
		Builder:         &DigestBuilder{Generator: p.gen, MaxInputChars: 1000, MaxOutputTokens: 300},
		Generator:       p.gen,
		AnswerMaxTokens: 1024,
	}
	p.svc = &Service{
		Conversation: p.conv,
		Transcripts:  transcripts,
		History:      p.history,
		WatchURL:     engine.DefaultWatchURL,
	}
	return p
}

func mustVideo(t *testing.T, ref string) Source {
	t.Helper()
	src, err := VideoSource(ref)
	if err != nil {
		t.Fatalf("VideoSource(%q): %v", ref, err)
	}
	return src
}

func mustWeb(t *testing.T, mode, input string) Source {
	t.Helper()
	src, err := WebSource(mode, input)
	if err != nil {
		t.Fatalf("WebSource(%q, %q): %v", mode, input, err)
	}
	return src
}
