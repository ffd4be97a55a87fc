package insight

import (
	"strings"
	"testing"

	"github.com/anatolykoptev/go_insight/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTranscriptExample(t *testing.T) {
	doc := &engine.TranscriptDocument{Segments: []engine.TimedSegment{{Text: "hello world", OffsetMs: 1500}}}
	got := SearchTranscript(doc, "world")
	assert.Equal(t, []engine.SearchMatch{{Text: "hello world", TimestampSeconds: 1.5}}, got)
}

func TestSearchTranscript(t *testing.T) {
	doc := &engine.TranscriptDocument{VideoID: testVideoID, Segments: testSegments}

	tests := []struct {
		name    string
		keyword string
		want    []float64
	}{
		{"case insensitive", "GO", []float64{1.5, 61.25}},
		{"substring", "chan", []float64{0, 125.9}},
		{"no match", "rust", nil},
		{"no cross-segment match", "cheap and", nil},
		{"empty keyword", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchTranscript(doc, tt.keyword)
			require.NotNil(t, got)
			var ts []float64
			for _, m := range got {
				assert.Contains(t, strings.ToLower(m.Text), strings.ToLower(tt.keyword))
				ts = append(ts, m.TimestampSeconds)
			}
			assert.Equal(t, tt.want, ts)
		})
	}
}

func TestSearchTranscriptNilDoc(t *testing.T) {
	assert.Empty(t, SearchTranscript(nil, "x"))
}

func TestDeepLink(t *testing.T) {
	tests := []struct {
		id      string
		seconds float64
		want    string
	}{
		{testVideoID, 1.5, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=2"},
		{testVideoID, 61.25, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=61"},
		{testVideoID, 0, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=0"},
		{"", 10, "#"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeepLink(engine.DefaultWatchURL, tt.id, tt.seconds))
	}
	assert.Equal(t, "https://www.youtube.com/watch?v=abc&t=3", DeepLink("", "abc", 3))
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{1.5, "0:01"},
		{59.99, "0:59"},
		{61.25, "1:01"},
		{125.9, "2:05"},
		{3600, "60:00"},
		{-4, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.seconds), "FormatTimestamp(%v)", tt.seconds)
	}
}

func TestViewMatches(t *testing.T) {
	views := ViewMatches(engine.DefaultWatchURL, testVideoID, []engine.SearchMatch{{Text: "x", TimestampSeconds: 61.25}})
	require.Len(t, views, 1)
	assert.Equal(t, "1:01", views[0].Timestamp)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=61", views[0].Link)

	assert.Equal(t, "#", ViewMatches(engine.DefaultWatchURL, "", []engine.SearchMatch{{Text: "x"}})[0].Link)
}
