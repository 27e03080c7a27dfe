// Package history records completed AI analyses in a local SQLite
// database. It is an optional subsystem: if the store cannot be opened,
// the server keeps working and simply stops recording.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	tool        TEXT NOT NULL,
	subject     TEXT NOT NULL,
	model       TEXT NOT NULL,
	output_file TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
`

// Entry is one recorded analysis.
type Entry struct {
	ID         string
	Tool       string
	Subject    string
	Model      string
	OutputFile string
	CreatedAt  string
}

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// DefaultPath places the database under the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".gitscope", "history.db"), nil
}

// Open creates (or opens) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts one analysis entry, filling ID and CreatedAt, and
// returns the completed entry.
func (s *Store) Record(e Entry) (Entry, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.Exec(
		`INSERT INTO analyses (id, tool, subject, model, output_file, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Tool, e.Subject, e.Model, e.OutputFile, e.CreatedAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("recording analysis: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, tool, subject, model, output_file, created_at
		 FROM analyses ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Tool, &e.Subject, &e.Model, &e.OutputFile, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
