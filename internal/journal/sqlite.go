// Package journal records migration runs in SQLite.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blit-migrate/internal/blit"
	"blit-migrate/internal/journal/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteJournal implements blit.Journal on a SQLite database.
type SQLiteJournal struct {
	db   *sql.DB
	path string
}

// NewSQLiteJournal opens the journal at path, creating and migrating the
// schema as needed. path can be a file path or ":memory:".
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal schema: %w", err)
	}

	return &SQLiteJournal{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database, and a file
	// journal has a single writer anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

const runColumns = `id, source, destination, overwrite, dry_run, status, stage,
	error_kind, error_message, cel_count, frame_count, asset_count, started_at, finished_at`

// StartRun inserts a new run record.
func (j *SQLiteJournal) StartRun(run *blit.Run) error {
	_, err := j.db.Exec(`INSERT INTO migration_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Destination, run.Overwrite, run.DryRun,
		string(run.Status), string(run.Stage), run.ErrorKind, run.ErrorMessage,
		run.CelCount, run.FrameCount, run.AssetCount,
		run.StartedAt.UnixNano(), nullTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stores the outcome of a run started with StartRun.
func (j *SQLiteJournal) FinishRun(run *blit.Run) error {
	res, err := j.db.Exec(`UPDATE migration_runs SET
			source = ?, destination = ?, status = ?, stage = ?,
			error_kind = ?, error_message = ?,
			cel_count = ?, frame_count = ?, asset_count = ?, finished_at = ?
		WHERE id = ?`,
		run.Source, run.Destination, string(run.Status), string(run.Stage),
		run.ErrorKind, run.ErrorMessage,
		run.CelCount, run.FrameCount, run.AssetCount, nullTime(run.FinishedAt),
		run.ID)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}
	if n != 1 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (j *SQLiteJournal) ListRuns(limit int) ([]*blit.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.Query(`SELECT `+runColumns+` FROM migration_runs
		ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*blit.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// FindRun returns the run with the given ID, or nil if there is none.
func (j *SQLiteJournal) FindRun(id string) (*blit.Run, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM migration_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Path returns the database path the journal was opened with.
func (j *SQLiteJournal) Path() string {
	return j.path
}

// CheckMigrations verifies that the schema is at the latest version.
func (j *SQLiteJournal) CheckMigrations() error {
	status, err := migrations.Check(j.db)
	if err != nil {
		return err
	}
	if !status.UpToDate() {
		return fmt.Errorf("journal schema is %s", status)
	}
	return nil
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*blit.Run, error) {
	var (
		run      blit.Run
		status   string
		stage    string
		started  int64
		finished sql.NullInt64
	)
	err := s.Scan(&run.ID, &run.Source, &run.Destination, &run.Overwrite, &run.DryRun,
		&status, &stage, &run.ErrorKind, &run.ErrorMessage,
		&run.CelCount, &run.FrameCount, &run.AssetCount, &started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Status = blit.RunStatus(status)
	run.Stage = blit.Stage(stage)
	run.StartedAt = time.Unix(0, started).UTC()
	if finished.Valid {
		run.FinishedAt = time.Unix(0, finished.Int64).UTC()
	}
	return &run, nil
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

// Compile-time check that SQLiteJournal implements blit.Journal interface
var _ blit.Journal = (*SQLiteJournal)(nil)
