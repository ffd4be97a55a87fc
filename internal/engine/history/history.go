// Package history records summaries and answers per session. It is an audit
// log: the pipeline works without it and never fails because of it.
package history

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Intent names stored in Interaction.Intent.
const (
	IntentSummarize = "summarize"
	IntentAsk       = "ask"
	IntentSearch    = "search"
)

// Interaction is one recorded result.
type Interaction struct {
	ID         int64     `json:"id"`
	Session    string    `json:"session"`
	Intent     string    `json:"intent"`
	SourceKind string    `json:"source_kind"`
	SourceRef  string    `json:"source_ref"`
	Question   string    `json:"question,omitempty"`
	Output     string    `json:"output"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists interactions.
type Store interface {
	Record(ctx context.Context, in Interaction) error
	List(ctx context.Context, session string, limit int) ([]Interaction, error)
	Close() error
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ClampLimit maps <= 0 to DefaultLimit and caps at MaxLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// DefaultSQLitePath is ~/.go_insight/history.db.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_insight", "history.db")
}

// Open picks PostgreSQL when databaseURL is set, SQLite at sqlitePath otherwise.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		pg, err := ConnectPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	if sqlitePath == "" {
		sqlitePath = DefaultSQLitePath()
	}
	lite, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, err
	}
	return lite, nil
}
