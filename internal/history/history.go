// Package history persists launch records in a local SQLite database so
// `keyrun history` and the control API can show what was launched recently.
// SQLite allows one writer at a time; the pool is pinned to a single
// connection and WAL keeps readers unblocked.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/keyrun-app/keyrun/internal/errors"
	"github.com/keyrun-app/keyrun/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS launches (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	target     TEXT NOT NULL,
	kind       TEXT NOT NULL,
	pid        INTEGER NOT NULL,
	started_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_launches_started_at ON launches(started_at DESC);
`

// Entry is one recorded launch.
type Entry struct {
	ID        string           `json:"id"`
	Input     string           `json:"input"`
	Target    string           `json:"target"`
	Kind      types.TargetKind `json:"kind"`
	PID       int              `json:"pid"`
	StartedAt time.Time        `json:"started_at"`
}

// Store is the SQLite-backed launch log.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the per-user history database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".keyrun", "history.db"), nil
}

// Open opens (creating if needed) the launch log at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.NewInternal("history database path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.NewInternal("creating history database directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewInternal("opening history database", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.NewInternal("configuring history database", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewInternal("initializing history schema", err)
	}

	return &Store{db: db}, nil
}

// Record appends one launch to the log.
func (s *Store) Record(ctx context.Context, launch *types.Launch) error {
	if launch == nil {
		return errors.NewArgument(errors.CodeNilCommand, "launch is nil")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO launches (id, input, target, kind, pid, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		launch.ID, launch.Input, launch.Spec.Target, string(launch.Spec.Kind), launch.PID, launch.StartedAt.UTC(),
	)
	if err != nil {
		return errors.NewInternal("recording launch", err)
	}
	return nil
}

// Recent returns up to limit launches, newest first. A non-positive limit
// selects 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, target, kind, pid, started_at FROM launches ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errors.NewInternal("querying launch history", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.ID, &e.Input, &e.Target, &kind, &e.PID, &e.StartedAt); err != nil {
			return nil, errors.NewInternal("scanning launch history row", err)
		}
		e.Kind = types.TargetKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal("reading launch history", err)
	}
	return entries, nil
}

// Count returns the total number of recorded launches.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM launches`).Scan(&n); err != nil {
		return 0, errors.NewInternal("counting launch history", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
