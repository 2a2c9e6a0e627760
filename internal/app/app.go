package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"blit-migrate/internal/assets"
	"blit-migrate/internal/blit"
	"blit-migrate/internal/config"
	"blit-migrate/internal/fs"
	"blit-migrate/internal/journal"
	"blit-migrate/internal/staging"
)

// Options tune an App beyond what the config file covers.
type Options struct {
	// Verbose logs stage transitions and per-asset copies.
	Verbose bool
}

// App is the application layer between the CLI and the Migrator.
// It constructs all dependencies from config, exposes operations that accept
// raw string paths, and closes the journal and log file on Close.
type App struct {
	cfg      *config.Config
	journal  blit.Journal
	migrator *blit.Migrator
	runID    string
	logFile  *os.File
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(cfg *config.Config, opts Options) (*App, error) {
	store, err := assets.NewAssetStoreFromConfig(cfg.Assets)
	if err != nil {
		return nil, fmt.Errorf("creating asset store: %w", err)
	}

	j, err := journal.NewJournalFromConfig(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	if checker, ok := j.(interface{ CheckMigrations() error }); ok {
		if err := checker.CheckMigrations(); err != nil {
			j.Close()
			return nil, fmt.Errorf("journal schema out of date: %w", err)
		}
	}

	idgen := blit.UUIDGenerator{}
	runID := idgen.New()

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger, logFile, err := newLogger(cfg.LogDir, runID, level)
	if err != nil {
		j.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	adapter := &slogAdapter{l: logger}

	migrator := blit.NewMigrator(
		fs.NewOSFilesystemManager(),
		staging.NewFileSystemStagingArea(adapter, cfg.Staging.KeepOnFailure),
		store,
		j,
		adapter,
		blit.RealClock{},
		idgen,
	)

	return &App{
		cfg:      cfg,
		journal:  j,
		migrator: migrator,
		runID:    runID,
		logFile:  logFile,
	}, nil
}

// RunID identifies this invocation in the log and the journal.
func (a *App) RunID() string {
	return a.runID
}

// Migrate upgrades the project at oldDir into newDir.
func (a *App) Migrate(ctx context.Context, oldDir, newDir string, overwrite, dryRun bool) (*blit.MigrationResult, error) {
	return a.migrator.Migrate(ctx, blit.MigrateOptions{
		Source:      oldDir,
		Destination: newDir,
		Overwrite:   overwrite,
		DryRun:      dryRun,
		RunID:       a.runID,
	})
}

// Inspect summarizes the project at rawPath.
func (a *App) Inspect(rawPath string) (*blit.ProjectInfo, error) {
	return a.migrator.Inspect(rawPath)
}

// History returns the most recent migration runs.
func (a *App) History(limit int) ([]*blit.Run, error) {
	return a.migrator.History(limit)
}

// Close closes the journal and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.journal.Close(); err != nil {
		firstErr = fmt.Errorf("closing journal: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
