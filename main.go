// go_insight: content insight MCP server.
//
// Turns a YouTube video or a web page into a conversational knowledge source:
// summaries, grounded follow-up answers and timestamped transcript search.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_insight/internal/engine"
	"github.com/anatolykoptev/go_insight/internal/engine/history"
	"github.com/anatolykoptev/go_insight/internal/engine/insight"
	"github.com/anatolykoptev/go_insight/internal/engine/sources"
	"github.com/anatolykoptev/go_insight/internal/insightserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	initEngine()

	store := engine.OpenContextStore(env.Str("REDIS_URL", ""), engine.Cfg.ContextTTL,
		engine.Cfg.CacheMaxEntries, engine.Cfg.CacheCleanupInterval)
	defer store.Close()

	hist := openHistory()
	if hist != nil {
		defer hist.Close()
	}

	deps := insightserver.Deps{Service: newService(store, hist), History: hist}

	slog.Info("starting go_insight",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_insight",
		Version: version,
	}, nil)

	insightserver.RegisterTools(server, deps)
	slog.Info("tools registered", slog.Int("count", insightserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_insight",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.3),
		DigestMaxTokens:      env.Int("DIGEST_MAX_TOKENS", 300),
		AnswerMaxTokens:      env.Int("ANSWER_MAX_TOKENS", 1024),
		MaxInputChars:        env.Int("MAX_INPUT_CHARS", 24000),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 20*time.Second),
		GenerateTimeout:      env.Duration("GENERATE_TIMEOUT", 60*time.Second),
		ReaderURL:            env.Str("READER_URL", "https://r.jina.ai/"),
		SearchURL:            env.Str("SEARCH_URL", "https://s.jina.ai/"),
		ProxyAPIKey:          env.Str("PROXY_API_KEY", ""),
		ProxyRPS:             env.Float("PROXY_RPS", 2),
		TranscriptLangs:      env.List("TRANSCRIPT_LANGS", "en"),
		WatchURL:             env.Str("WATCH_URL", engine.DefaultWatchURL),
		ContextTTL:           env.Duration("CONTEXT_TTL", 24*time.Hour),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.AnswerMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 90 * time.Second}),
	)

	engine.Init(c)
}

// openHistory returns nil when no backend can be opened; the server then
// runs without interaction history.
func openHistory() history.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h, err := history.Open(ctx, env.Str("DATABASE_URL", ""), env.Str("HISTORY_DB", history.DefaultSQLitePath()))
	if err != nil {
		slog.Warn("history init failed, running without history", slog.Any("error", err))
		return nil
	}
	slog.Info("history initialized")
	return h
}

func newService(store *engine.ContextStore, hist history.Store) *insight.Service {
	gen := engine.NewLLMGenerator(engine.Cfg.LLMClient, engine.Cfg.LLMTemperature)
	transcripts := &insight.TranscriptSource{Provider: sources.NewYouTube()}

	return &insight.Service{
		Conversation: &insight.Conversation{
			Store: store,
			Loader: &insight.Loader{
				Transcripts: transcripts,
				Content:     &insight.ContentFetcher{Proxy: sources.NewContentProxy()},
			},
			Builder:         insight.NewDigestBuilder(gen),
			Generator:       gen,
			AnswerMaxTokens: engine.Cfg.AnswerMaxTokens,
		},
		Transcripts: transcripts,
		History:     hist,
		WatchURL:    engine.Cfg.WatchURL,
	}
}
