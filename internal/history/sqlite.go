// Package history keeps a SQLite record of export runs and their entries.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/staticbuilder/internal/export"
)

// ErrRunNotFound is returned for unknown run ids.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded export run.
type Run struct {
	ID       string
	Mode     string
	Target   string
	Outcome  string
	Started  time.Time
	Finished time.Time
	Entries  int
}

// Store records runs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and creates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive between calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		target TEXT NOT NULL,
		started INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS entries (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		source TEXT NOT NULL,
		dest TEXT,
		status TEXT NOT NULL,
		reason TEXT,
		size INTEGER,
		lang TEXT,
		files TEXT,
		PRIMARY KEY (run_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores res and all of its entries in one transaction.
func (s *Store) Record(ctx context.Context, res *export.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, mode, target, started, finished, outcome) VALUES (?, ?, ?, ?, ?, ?)",
		res.RunID, res.Mode(), res.Target, res.Start.UnixNano(), res.End.UnixNano(), res.Outcome(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries (run_id, seq, kind, source, dest, status, reason, size, lang, files) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range res.Entries {
		var size sql.NullInt64
		if e.Size != nil {
			size = sql.NullInt64{Int64: *e.Size, Valid: true}
		}
		var files []byte
		if len(e.Files) > 0 {
			if files, err = json.Marshal(e.Files); err != nil {
				return fmt.Errorf("marshal files: %w", err)
			}
		}
		if _, err := stmt.ExecContext(ctx, res.RunID, i, string(e.Kind), e.Source, e.Dest, string(e.Status), e.Reason, size, e.Lang, files); err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Runs returns the most recent runs, newest first. limit <= 0 means all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := `SELECT r.id, r.mode, r.target, r.outcome, r.started, r.finished,
		(SELECT COUNT(*) FROM entries e WHERE e.run_id = r.id)
		FROM runs r ORDER BY r.started DESC, r.id`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Mode, &r.Target, &r.Outcome, &started, &finished, &r.Entries); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Started = time.Unix(0, started)
		r.Finished = time.Unix(0, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Entries returns the entries of runID in their original order.
func (s *Store) Entries(ctx context.Context, runID string) ([]export.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, source, dest, status, reason, size, lang, files FROM entries WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []export.Entry
	for rows.Next() {
		var (
			e                         export.Entry
			kind, status              string
			dest, reason, lang, files sql.NullString
			size                      sql.NullInt64
		)
		if err := rows.Scan(&kind, &e.Source, &dest, &status, &reason, &size, &lang, &files); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Kind, e.Status = export.EntryKind(kind), export.Status(status)
		e.Dest, e.Reason, e.Lang = dest.String, reason.String, lang.String
		if size.Valid {
			n := size.Int64
			e.Size = &n
		}
		if files.Valid && files.String != "" {
			if err := json.Unmarshal([]byte(files.String), &e.Files); err != nil {
				return nil, fmt.Errorf("decode files: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
