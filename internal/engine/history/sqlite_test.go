package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "sub", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, Interaction{
		Session: "alice", Intent: IntentSummarize, SourceKind: "video",
		SourceRef: "youtube:dQw4w9WgXcQ", Output: "summary",
	}))
	require.NoError(t, s.Record(ctx, Interaction{
		Session: "alice", Intent: IntentAsk, SourceKind: "video",
		SourceRef: "youtube:dQw4w9WgXcQ", Question: "why?", Output: "because",
	}))
	require.NoError(t, s.Record(ctx, Interaction{
		Session: "bob", Intent: IntentSummarize, SourceKind: "web",
		SourceRef: "web:read:https://example.com", Output: "other",
	}))

	got, err := s.List(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, IntentAsk, got[0].Intent, "newest first")
	assert.Equal(t, "why?", got[0].Question)
	assert.Equal(t, "because", got[0].Output)
	assert.Equal(t, IntentSummarize, got[1].Intent)
	assert.Empty(t, got[1].Question)
	assert.WithinDuration(t, time.Now(), got[0].CreatedAt, time.Minute)

	got, err = s.List(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteListEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.List(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLiteClosedStoreFails(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Error(t, s.Record(context.Background(), Interaction{Session: "x", Output: "y"}))
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{7, 7},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(tt.in), "ClampLimit(%d)", tt.in)
	}
}

func TestOpenFallsBackToSQLite(t *testing.T) {
	s, err := Open(context.Background(), "", filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer s.Close()
	_, ok := s.(*SQLiteStore)
	assert.True(t, ok)
}
