package insightserver

import (
	"time"

	"github.com/anatolykoptev/go_insight/internal/engine/history"
)

// VideoSummarizeInput is the input for video_summarize.
type VideoSummarizeInput struct {
	Video   string `json:"video" jsonschema:"YouTube URL or 11-character video ID"`
	Keyword string `json:"keyword,omitempty" jsonschema:"optional keyword to locate in the transcript"`
	Focus   string `json:"focus,omitempty" jsonschema:"optional aspect the summary should focus on"`
	Session string `json:"session,omitempty" jsonschema:"opaque conversation/user token; enables follow-ups and history"`
}

// VideoAskInput is the input for video_ask.
type VideoAskInput struct {
	Video    string `json:"video" jsonschema:"YouTube URL or 11-character video ID"`
	Question string `json:"question" jsonschema:"question about the video"`
	Session  string `json:"session,omitempty" jsonschema:"opaque conversation/user token"`
}

// TranscriptSearchInput is the input for transcript_search.
type TranscriptSearchInput struct {
	Video   string `json:"video" jsonschema:"YouTube URL or 11-character video ID"`
	Keyword string `json:"keyword" jsonschema:"case-insensitive keyword"`
}

// WebSummarizeInput is the input for web_summarize.
type WebSummarizeInput struct {
	Input   string `json:"input" jsonschema:"URL (mode=read) or search query (mode=search)"`
	Mode    string `json:"mode" jsonschema:"read (r) or search (s)"`
	Focus   string `json:"focus,omitempty" jsonschema:"optional aspect the summary should focus on"`
	Session string `json:"session,omitempty" jsonschema:"opaque conversation/user token"`
}

// WebAskInput is the input for web_ask.
type WebAskInput struct {
	Input    string `json:"input" jsonschema:"URL (mode=read) or search query (mode=search)"`
	Mode     string `json:"mode" jsonschema:"read (r) or search (s)"`
	Question string `json:"question" jsonschema:"question about the content"`
	Session  string `json:"session,omitempty" jsonschema:"opaque conversation/user token"`
}

// HistoryInput is the input for interaction_history.
type HistoryInput struct {
	Session string `json:"session" jsonschema:"session token used with the other tools"`
	Limit   int    `json:"limit,omitempty" jsonschema:"max entries, default 20, max 100"`
}

// HistoryEntry is one recorded interaction as shown to clients.
type HistoryEntry struct {
	ID         int64  `json:"id"`
	Intent     string `json:"intent"`
	SourceKind string `json:"source_kind"`
	SourceRef  string `json:"source_ref"`
	Question   string `json:"question,omitempty"`
	Output     string `json:"output"`
	CreatedAt  string `json:"created_at"` // RFC 3339
}

// HistoryOutput is the output for interaction_history.
type HistoryOutput struct {
	Session      string         `json:"session"`
	Interactions []HistoryEntry `json:"interactions"`
	Total        int            `json:"total"`
}

func historyEntries(rows []history.Interaction) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, HistoryEntry{
			ID:         r.ID,
			Intent:     r.Intent,
			SourceKind: r.SourceKind,
			SourceRef:  r.SourceRef,
			Question:   r.Question,
			Output:     r.Output,
			CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
