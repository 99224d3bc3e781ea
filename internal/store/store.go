// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store archives extracted tables in a SQLite database. Every run
// gets its own identifier so earlier runs stay queryable after the CSV
// files are overwritten.
package store

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

	"github.com/pdiddy/report-extract/pkg/types"
)

// ErrNotFound is returned when a run or table is not in the archive.
var ErrNotFound = errors.New("not found in archive")

// Store manages the archive database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the archive at path and creates its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
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
			id TEXT PRIMARY KEY,
			report TEXT NOT NULL,
			markers_version TEXT NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS archived_tables (
			run_id TEXT NOT NULL REFERENCES runs(id),
			name TEXT NOT NULL,
			destination TEXT NOT NULL,
			columns TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS table_rows (
			run_id TEXT NOT NULL,
			table_name TEXT NOT NULL,
			row_index INTEGER NOT NULL,
			cells TEXT NOT NULL,
			PRIMARY KEY (run_id, table_name, row_index),
			FOREIGN KEY (run_id, table_name) REFERENCES archived_tables(run_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS skips (
			run_id TEXT NOT NULL REFERENCES runs(id),
			name TEXT NOT NULL,
			reason TEXT NOT NULL,
			PRIMARY KEY (run_id, name)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one archived pipeline run.
type Run struct {
	ID             string
	Report         string
	MarkersVersion string
	StartedAt      time.Time
}

// BeginRun registers a new run and returns a Recorder bound to it.
func (s *Store) BeginRun(ctx context.Context, report, markersVersion string) (*Recorder, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, report, markers_version, started_at) VALUES (?, ?, ?, ?)`,
		id, report, markersVersion, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	return &Recorder{store: s, runID: id}, nil
}

// Runs lists archived runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report, markers_version, started_at FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Report, &r.MarkersVersion, &started); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *Store) saveTable(ctx context.Context, runID string, t *types.Table) error {
	columnsJSON, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("marshaling columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// A table saved twice in one run replaces its earlier rows.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM table_rows WHERE run_id = ? AND table_name = ?`, runID, t.Name); err != nil {
		return fmt.Errorf("deleting old rows: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO archived_tables (run_id, name, destination, columns, row_count) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, name) DO UPDATE SET
			destination=excluded.destination, columns=excluded.columns, row_count=excluded.row_count`,
		runID, t.Name, t.Destination, string(columnsJSON), t.Len(),
	)
	if err != nil {
		return fmt.Errorf("upserting table %s: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO table_rows (run_id, table_name, row_index, cells) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range t.Records {
		cellsJSON, _ := json.Marshal(t.Row(i))
		if _, err := stmt.ExecContext(ctx, runID, t.Name, i, string(cellsJSON)); err != nil {
			return fmt.Errorf("inserting row %d of %s: %w", i, t.Name, err)
		}
	}

	return tx.Commit()
}

func (s *Store) saveSkip(ctx context.Context, runID, name, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO skips (run_id, name, reason) VALUES (?, ?, ?)
		 ON CONFLICT(run_id, name) DO UPDATE SET reason=excluded.reason`,
		runID, name, reason,
	)
	if err != nil {
		return fmt.Errorf("inserting skip %s: %w", name, err)
	}
	return nil
}

// LoadTable reads an archived table back with its typed values.
func (s *Store) LoadTable(ctx context.Context, runID, name string) (*types.Table, error) {
	var destination, columnsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT destination, columns FROM archived_tables WHERE run_id = ? AND name = ?`, runID, name,
	).Scan(&destination, &columnsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s in run %s: %w", name, runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying table %s: %w", name, err)
	}

	var columns []types.Column
	if err := json.Unmarshal([]byte(columnsJSON), &columns); err != nil {
		return nil, fmt.Errorf("parsing columns of %s: %w", name, err)
	}
	table := types.NewTable(name, destination, columns...)

	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM table_rows WHERE run_id = ? AND table_name = ? ORDER BY row_index`, runID, name)
	if err != nil {
		return nil, fmt.Errorf("querying rows of %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return nil, fmt.Errorf("parsing row of %s: %w", name, err)
		}
		if len(cells) != len(columns) {
			return nil, fmt.Errorf("row of %s has %d cells, want %d", name, len(cells), len(columns))
		}
		rec := make(types.Record, len(columns))
		for i, c := range columns {
			v, err := types.ParseValue(c.Kind, cells[i])
			if err != nil {
				return nil, fmt.Errorf("row of %s, column %q: %w", name, c.Name, err)
			}
			rec[i] = v
		}
		if err := table.Append(rec); err != nil {
			return nil, err
		}
	}
	return table, rows.Err()
}

// Skips returns the skipped table names and reasons of a run.
func (s *Store) Skips(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, reason FROM skips WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying skips: %w", err)
	}
	defer rows.Close()

	skips := make(map[string]string)
	for rows.Next() {
		var name, reason string
		if err := rows.Scan(&name, &reason); err != nil {
			return nil, fmt.Errorf("scanning skip: %w", err)
		}
		skips[name] = reason
	}
	return skips, rows.Err()
}

// Recorder archives the tables and skips of one run.
type Recorder struct {
	store *Store
	runID string
}

// RunID returns the identifier of the bound run.
func (r *Recorder) RunID() string { return r.runID }

// SaveTable archives t under the run.
func (r *Recorder) SaveTable(ctx context.Context, t *types.Table) error {
	return r.store.saveTable(ctx, r.runID, t)
}

// SaveSkip archives the reason a table was not produced.
func (r *Recorder) SaveSkip(ctx context.Context, name, reason string) error {
	return r.store.saveSkip(ctx, r.runID, name, reason)
}
