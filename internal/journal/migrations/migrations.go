// Package migrations owns the run journal's SQLite schema. Schema changes are
// numbered SQL files embedded in the binary and applied with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var schemaFiles embed.FS

// Status describes a database's schema version relative to the embedded files.
type Status struct {
	// Current is 0 for a database that has never been migrated.
	Current uint
	Latest  uint
	Dirty   bool
}

// UpToDate reports whether the database is clean and at the latest version.
func (s Status) UpToDate() bool {
	return !s.Dirty && s.Current == s.Latest
}

func (s Status) String() string {
	switch {
	case s.Dirty:
		return fmt.Sprintf("dirty at version %d (a migration failed part way)", s.Current)
	case s.Current == 0:
		return "no schema version (needs migration)"
	case s.Current < s.Latest:
		return fmt.Sprintf("version %d, %d behind latest %d", s.Current, s.Latest-s.Current, s.Latest)
	case s.Current > s.Latest:
		return fmt.Sprintf("version %d is ahead of this binary (%d)", s.Current, s.Latest)
	default:
		return fmt.Sprintf("version %d (latest)", s.Current)
	}
}

// Check reports the schema status of db without changing it.
func Check(db *sql.DB) (Status, error) {
	latest, err := Latest()
	if err != nil {
		return Status{}, err
	}

	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}
	// m is not closed: closing it closes db, which the caller owns.

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{Latest: latest}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("reading schema version: %w", err)
	}
	return Status{Current: version, Latest: latest, Dirty: dirty}, nil
}

// Up applies every pending migration. A database that is already current is
// left alone.
func Up(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying schema migrations: %w", err)
	}
	return nil
}

// Latest returns the highest version among the embedded migration files.
func Latest() (uint, error) {
	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return 0, fmt.Errorf("reading migration files: %w", err)
	}
	defer src.Close()
	return lastVersion(src)
}

func lastVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("finding first migration: %w", err)
	}
	for {
		next, err := src.Next(version)
		if errors.Is(err, os.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("finding migration after %d: %w", version, err)
		}
		version = next
	}
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("reading migration files: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating sqlite3 migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}
