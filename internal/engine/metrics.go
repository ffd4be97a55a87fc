package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	ProxyRequests      atomic.Int64
	ProxyErrors        atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	DigestsBuilt       atomic.Int64
	DigestTruncations  atomic.Int64
	ImplicitIngests    atomic.Int64
	Answers            atomic.Int64
	TranscriptSearches atomic.Int64
	HistoryErrors      atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including context store stats.
func GetMetrics() map[string]int64 {
	hits, misses := StoreStats()
	return map[string]int64{
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_errors":   metrics.TranscriptErrors.Load(),
		"proxy_requests":      metrics.ProxyRequests.Load(),
		"proxy_errors":        metrics.ProxyErrors.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"digests_built":       metrics.DigestsBuilt.Load(),
		"digest_truncations":  metrics.DigestTruncations.Load(),
		"implicit_ingests":    metrics.ImplicitIngests.Load(),
		"answers":             metrics.Answers.Load(),
		"transcript_searches": metrics.TranscriptSearches.Load(),
		"history_errors":      metrics.HistoryErrors.Load(),
		"context_hits":        hits,
		"context_misses":      misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"transcript_requests", "transcript_errors",
		"proxy_requests", "proxy_errors",
		"llm_calls", "llm_errors",
		"digests_built", "digest_truncations",
		"implicit_ingests", "answers",
		"transcript_searches", "history_errors",
		"context_hits", "context_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptErrors()   { metrics.TranscriptErrors.Add(1) }
func IncrProxyRequests()      { metrics.ProxyRequests.Add(1) }
func IncrProxyErrors()        { metrics.ProxyErrors.Add(1) }
func IncrDigestsBuilt()       { metrics.DigestsBuilt.Add(1) }
func IncrDigestTruncations()  { metrics.DigestTruncations.Add(1) }
func IncrImplicitIngests()    { metrics.ImplicitIngests.Add(1) }
func IncrAnswers()            { metrics.Answers.Add(1) }
func IncrTranscriptSearches() { metrics.TranscriptSearches.Add(1) }
func IncrHistoryErrors()      { metrics.HistoryErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
