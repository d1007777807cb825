// Package runstore persists a history of analysis runs in SQLite.
package runstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("runstore: store is closed")
	// ErrRunNotFound is returned when no run matches the requested id.
	ErrRunNotFound = errors.New("runstore: run not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	dataset TEXT,
	params TEXT NOT NULL,
	metrics TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_command ON runs(command);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Run is one recorded invocation of an analysis command.
type Run struct {
	ID        string             `json:"id"`
	Command   string             `json:"command"`
	Dataset   string             `json:"dataset,omitempty"`
	Params    map[string]string  `json:"params,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Store keeps run history in a SQLite database.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
	logger *slog.Logger
}

// Open creates or opens the history database at path and ensures the schema
// exists. The parent directory is created when missing.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Record inserts a run, assigning its id and timestamp when unset, and
// returns the stored run.
func (s *Store) Record(run Run) (*Run, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}
	if run.Command == "" {
		return nil, errors.New("runstore: run has no command")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	params, err := json.Marshal(run.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metrics: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (id, command, dataset, params, metrics, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Command, run.Dataset, string(params), string(metrics), run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	s.logger.Debug("run recorded", "id", run.ID, "command", run.Command)
	return &run, nil
}

// Get returns the run with the given id.
func (s *Store) Get(id string) (*Run, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`
		SELECT id, command, dataset, params, metrics, created_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// List returns recorded runs, newest first. A non-empty command filters to
// that command; limit <= 0 returns everything.
func (s *Store) List(command string, limit int) ([]Run, error) {
	if err := s.checkClosed(); err != nil {
		return nil, err
	}

	query := `SELECT id, command, dataset, params, metrics, created_at FROM runs`
	var args []any
	if command != "" {
		query += ` WHERE command = ?`
		args = append(args, command)
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Close releases the database. Further operations fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) checkClosed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

func scanRun(scan func(...any) error) (*Run, error) {
	var run Run
	var params, metrics string
	if err := scan(&run.ID, &run.Command, &run.Dataset, &params, &metrics, &run.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(params), &run.Params); err != nil {
		return nil, fmt.Errorf("failed to decode params for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
		return nil, fmt.Errorf("failed to decode metrics for run %s: %w", run.ID, err)
	}
	return &run, nil
}
