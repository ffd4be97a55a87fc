package insight

import (
	"fmt"
	"math"
	"strings"

	"github.com/anatolykoptev/go_insight/internal/engine"
)

// SearchTranscript returns the segments whose text contains keyword,
// case-insensitively, in playback order. Each segment is matched on its
// own. An empty keyword matches nothing.
func SearchTranscript(doc *engine.TranscriptDocument, keyword string) []engine.SearchMatch {
	matches := []engine.SearchMatch{}
	if keyword == "" || doc == nil {
		return matches
	}
	needle := strings.ToLower(keyword)
	for _, seg := range doc.Segments {
		if strings.Contains(strings.ToLower(seg.Text), needle) {
			matches = append(matches, engine.SearchMatch{
				Text:             seg.Text,
				TimestampSeconds: float64(seg.OffsetMs) / 1000,
			})
		}
	}
	return matches
}

// DeepLink points at a playback offset: <watchURL>?v=<id>&t=<round(seconds)>.
// A missing id yields the placeholder "#".
func DeepLink(watchURL, videoID string, seconds float64) string {
	if videoID == "" {
		return "#"
	}
	if watchURL == "" {
		watchURL = engine.DefaultWatchURL
	}
	return fmt.Sprintf("%s?v=%s&t=%d", watchURL, videoID, int64(math.Round(seconds)))
}

// FormatTimestamp renders seconds as m:ss.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// MatchView is a SearchMatch with display fields.
type MatchView struct {
	Text             string  `json:"text"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Timestamp        string  `json:"timestamp"`
	Link             string  `json:"link"`
}

// ViewMatches decorates matches with m:ss timestamps and deep links.
func ViewMatches(watchURL, videoID string, matches []engine.SearchMatch) []MatchView {
	out := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchView{
			Text:             m.Text,
			TimestampSeconds: m.TimestampSeconds,
			Timestamp:        FormatTimestamp(m.TimestampSeconds),
			Link:             DeepLink(watchURL, videoID, m.TimestampSeconds),
		})
	}
	return out
}
