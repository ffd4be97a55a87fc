package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	DigestMaxTokens    int // hard cap on generated digest length
	AnswerMaxTokens    int // hard cap on follow-up answers
	MaxInputChars      int // digest input is head-truncated to this many runes
	FetchTimeout       time.Duration
	GenerateTimeout    time.Duration

	ReaderURL   string  // content proxy endpoint for mode=read
	SearchURL   string  // content proxy endpoint for mode=search
	ProxyAPIKey string  // optional bearer token for the content proxy
	ProxyRPS    float64 // client-side rate limit for the content proxy (0 = unlimited)

	TranscriptLangs []string
	WatchURL        string

	ContextTTL           time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = watch page fetched with HTTPClient
	LLMClient     *llm.Client
}

// DefaultWatchURL is the playback page used for deep links.
const DefaultWatchURL = "https://www.youtube.com/watch"

var cfg = Config{
	DigestMaxTokens: 300,
	AnswerMaxTokens: 1024,
	MaxInputChars:   24000,
	FetchTimeout:    20 * time.Second,
	GenerateTimeout: 60 * time.Second,
	ReaderURL:       "https://r.jina.ai/",
	SearchURL:       "https://s.jina.ai/",
	TranscriptLangs: []string{"en"},
	WatchURL:        DefaultWatchURL,
	ContextTTL:      24 * time.Hour,
	HTTPClient:      &http.Client{Timeout: 30 * time.Second},
}

// Cfg exposes the engine configuration for sub-packages (sources, insight).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero-valued limits keep their defaults.
func Init(c Config) {
	if c.DigestMaxTokens <= 0 {
		c.DigestMaxTokens = cfg.DigestMaxTokens
	}
	if c.AnswerMaxTokens <= 0 {
		c.AnswerMaxTokens = cfg.AnswerMaxTokens
	}
	if c.MaxInputChars <= 0 {
		c.MaxInputChars = cfg.MaxInputChars
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = cfg.FetchTimeout
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = cfg.GenerateTimeout
	}
	if c.WatchURL == "" {
		c.WatchURL = DefaultWatchURL
	}
	if len(c.TranscriptLangs) == 0 {
		c.TranscriptLangs = []string{"en"}
	}
	if c.HTTPClient == nil {
		c.HTTPClient = cfg.HTTPClient
	}
	cfg = c
	Cfg = &cfg
}
