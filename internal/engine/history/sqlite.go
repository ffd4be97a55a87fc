package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps history in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS interactions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session     TEXT NOT NULL,
		intent      TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		source_ref  TEXT NOT NULL,
		question    TEXT,
		output      TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions (session, id DESC)`)
	return err
}

// Record inserts one interaction. CreatedAt defaults to now.
func (s *SQLiteStore) Record(ctx context.Context, in Interaction) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (session, intent, source_kind, source_ref, question, output, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Session, in.Intent, in.SourceKind, in.SourceRef, in.Question, in.Output,
		in.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// List returns the newest interactions of session first.
func (s *SQLiteStore) List(ctx context.Context, session string, limit int) ([]Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, intent, source_kind, source_ref, COALESCE(question, ''), output, created_at
		 FROM interactions WHERE session = ? ORDER BY id DESC LIMIT ?`,
		session, ClampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	out := []Interaction{}
	for rows.Next() {
		var in Interaction
		var created string
		if err := rows.Scan(&in.ID, &in.Session, &in.Intent, &in.SourceKind, &in.SourceRef, &in.Question, &in.Output, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		in.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
