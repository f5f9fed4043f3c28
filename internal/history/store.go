// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records check runs in a local SQLite database so results
// can be compared across runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/doccheck/internal/check"
	"github.com/pdiddy/doccheck/pkg/types"
)

// DefaultDBPath is used when no database path is configured.
const DefaultDBPath = ".doccheck/history.db"

// ErrRunNotFound is returned by Get for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded check run.
type Run struct {
	ID        string        `json:"id" yaml:"id"`
	Root      string        `json:"root" yaml:"root"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
	Strict    bool          `json:"strict" yaml:"strict"`
	Digest    string        `json:"digest" yaml:"digest"`
	Summary   types.Summary `json:"summary" yaml:"summary"`
}

// Store manages the history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the history database at dbPath, creating parent
// directories and the schema as needed.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			root TEXT NOT NULL,
			created_at TEXT NOT NULL,
			strict INTEGER NOT NULL,
			digest TEXT,
			summary TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS violations (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			path TEXT,
			line INTEGER,
			body TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_violations_kind ON violations(kind)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores rep as a new run and returns it.
func (s *Store) Record(ctx context.Context, rep *check.Report) (Run, error) {
	run := Run{
		ID:        uuid.New().String(),
		Root:      rep.Root,
		CreatedAt: s.now().UTC(),
		Strict:    rep.Strict,
		Digest:    rep.Digest,
		Summary:   rep.Summary,
	}

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return Run{}, fmt.Errorf("encoding summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, root, created_at, strict, digest, summary) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.CreatedAt.Format(time.RFC3339Nano), run.Strict, run.Digest, string(summaryJSON),
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO violations (run_id, position, kind, path, line, body) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range rep.Violations {
		body, err := json.Marshal(v)
		if err != nil {
			return Run{}, fmt.Errorf("encoding violation: %w", err)
		}
		loc := v.Primary()
		if _, err := stmt.ExecContext(ctx, run.ID, i, string(v.Kind), loc.Path, loc.Line, string(body)); err != nil {
			return Run{}, fmt.Errorf("inserting violation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, created_at, strict, digest, summary FROM runs ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns the run with the given id, or ErrRunNotFound.
func (s *Store) Get(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, root, created_at, strict, digest, summary FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (Run, error) {
	var (
		run         Run
		createdAt   string
		digest      sql.NullString
		summaryJSON string
	)
	if err := sc.Scan(&run.ID, &run.Root, &createdAt, &run.Strict, &digest, &summaryJSON); err != nil {
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	var err error
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parsing run time: %w", err)
	}
	run.Digest = digest.String
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return Run{}, fmt.Errorf("decoding summary: %w", err)
	}
	return run, nil
}

// Violations returns the violations recorded for runID in report order.
func (s *Store) Violations(ctx context.Context, runID string) ([]types.Violation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM violations WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying violations: %w", err)
	}
	defer rows.Close()

	var out []types.Violation
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning violation: %w", err)
		}
		var v types.Violation
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return nil, fmt.Errorf("decoding violation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
