// Package history records one row per finished copy task in a local SQLite
// database. It is a run journal for the operator, not a file index: nothing
// about individual files is persisted.
package history

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Outcome labels for a recorded run.
const (
	OutcomeCompleted  = "completed"
	OutcomeStopped    = "stopped"
	OutcomeFailed     = "failed"
	OutcomeNoResults  = "no-results"
	OutcomeNoKeywords = "no-keywords"
)

// Run is one recorded task invocation.
type Run struct {
	ID           string
	StartedAt    time.Time
	Sources      []string
	Keywords     []string
	Destination  string
	Matched      int
	FilesCopied  int
	DurationSecs float64
	Outcome      string
}

// Store manages the SQLite run-history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// ":memory:" is accepted for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts one finished run.
func (s *Store) RecordRun(run Run) error {
	sources, err := json.Marshal(run.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	keywords, err := json.Marshal(run.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (id, started_at, sources, keywords, destination, matched, files_copied, duration_secs, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), string(sources), string(keywords), run.Destination,
		run.Matched, run.FilesCopied, run.DurationSecs, run.Outcome)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, started_at, sources, keywords, destination, matched, files_copied, duration_secs, outcome
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var sources, keywords string
		if err := rows.Scan(&run.ID, &run.StartedAt, &sources, &keywords, &run.Destination,
			&run.Matched, &run.FilesCopied, &run.DurationSecs, &run.Outcome); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &run.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources for run %s: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(keywords), &run.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshal keywords for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ExportJSON renders all recorded runs as indented JSON, newest first.
func (s *Store) ExportJSON() ([]byte, error) {
	runs, err := s.RecentRuns(1 << 20)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []Run{}
	}
	return json.MarshalIndent(struct {
		Runs []Run `json:"runs"`
	}{Runs: runs}, "", "  ")
}
