// Package store persists resolution runs in a sqlite database so outcome
// drift between runs of the same world can be detected.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	file       TEXT NOT NULL,
	started_at TEXT NOT NULL,
	passed     INTEGER NOT NULL,
	failed     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_file ON runs(file, started_at);
CREATE TABLE IF NOT EXISTS outcomes (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	case_name   TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	type        TEXT NOT NULL,
	code        TEXT NOT NULL,
	candidates  TEXT NOT NULL,
	rendered    TEXT NOT NULL,
	mismatch    TEXT NOT NULL,
	duration_us INTEGER NOT NULL,
	PRIMARY KEY (run_id, case_name)
);
`

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// candidateSeparator joins candidate identities in one column. Identities
// never contain a newline.
const candidateSeparator = "\n"

// Run is one stored pipeline run.
type Run struct {
	ID        string
	File      string
	StartedAt time.Time
	Passed    int
	Failed    int
}

// Outcome is the stored result of one case.
type Outcome struct {
	Case       string
	Outcome    string
	Symbol     string
	Type       string
	Code       string
	Candidates []string
	Rendered   string
	Mismatch   string
	Duration   time.Duration
}

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores run and its outcomes in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, outcomes []Outcome) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, file, started_at, passed, failed) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.File, run.StartedAt.UTC().Format(timeLayout), run.Passed, run.Failed)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO outcomes
		(run_id, case_name, outcome, symbol, type, code, candidates, rendered, mismatch, duration_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	defer stmt.Close()
	for _, o := range outcomes {
		_, err = stmt.ExecContext(ctx, run.ID, o.Case, o.Outcome, o.Symbol, o.Type, o.Code,
			strings.Join(o.Candidates, candidateSeparator), o.Rendered, o.Mismatch, o.Duration.Microseconds())
		if err != nil {
			return fmt.Errorf("saving outcome %s of run %s: %w", o.Case, run.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// LatestRun returns the most recent run of file, ok false when there is none.
func (s *Store) LatestRun(ctx context.Context, file string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, file, started_at, passed, failed FROM runs
		 WHERE file = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`, file)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("latest run of %s: %w", file, err)
	}
	return run, true, nil
}

// Runs lists the most recent runs, newest first. limit <= 0 lists all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, file, started_at, passed, failed FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Outcomes returns the outcomes of a run ordered by case name.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT case_name, outcome, symbol, type, code, candidates, rendered, mismatch, duration_us
		 FROM outcomes WHERE run_id = ? ORDER BY case_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("outcomes of run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var candidates string
		var us int64
		if err := rows.Scan(&o.Case, &o.Outcome, &o.Symbol, &o.Type, &o.Code, &candidates, &o.Rendered, &o.Mismatch, &us); err != nil {
			return nil, fmt.Errorf("outcomes of run %s: %w", runID, err)
		}
		if candidates != "" {
			o.Candidates = strings.Split(candidates, candidateSeparator)
		}
		o.Duration = time.Duration(us) * time.Microsecond
		out = append(out, o)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var started string
	if err := sc.Scan(&run.ID, &run.File, &started, &run.Passed, &run.Failed); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad timestamp %q: %w", run.ID, started, err)
	}
	run.StartedAt = t
	return run, nil
}
