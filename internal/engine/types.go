package engine

import (
	"fmt"
	"time"
)

// --- Core data model ---

// TimedSegment is one unit of transcript text with its playback offset.
type TimedSegment struct {
	Text     string `json:"text"`
	OffsetMs int64  `json:"offset_ms"`
}

// TranscriptDocument is an ordered transcript of one video.
// Segment order is playback order.
type TranscriptDocument struct {
	VideoID  string         `json:"video_id"`
	Segments []TimedSegment `json:"segments"`
}

// Text joins all segment texts with single spaces.
func (d *TranscriptDocument) Text() string {
	n := 0
	for _, s := range d.Segments {
		n += len(s.Text) + 1
	}
	b := make([]byte, 0, n)
	for _, s := range d.Segments {
		if s.Text == "" {
			continue
		}
		if len(b) > 0 {
			b = append(b, ' ')
		}
		b = append(b, s.Text...)
	}
	return string(b)
}

// ConversationContext is the digest bound to one source.
type ConversationContext struct {
	SourceRef string    `json:"source_ref"`
	Digest    string    `json:"digest"`
	Truncated bool      `json:"truncated,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchMatch is a transcript segment containing a keyword.
type SearchMatch struct {
	Text             string  `json:"text"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
}

// FetchMode selects how the content proxy interprets its input.
type FetchMode string

const (
	ModeRead   FetchMode = "read"
	ModeSearch FetchMode = "search"
)

// ParseMode accepts read/search and the short r/s aliases.
func ParseMode(s string) (FetchMode, error) {
	switch s {
	case "read", "r":
		return ModeRead, nil
	case "search", "s":
		return ModeSearch, nil
	}
	return "", &Error{Kind: KindInvalidMode, Message: fmt.Sprintf("invalid mode %q: use 'read' for URL reading or 'search' for web search", s)}
}

// SourceKind tells the pipeline which adapter produces raw text for a source.
type SourceKind string

const (
	SourceVideo SourceKind = "video"
	SourceWeb   SourceKind = "web"
)
