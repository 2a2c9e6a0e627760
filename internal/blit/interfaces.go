package blit

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so run timing is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator produces run identifiers.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Logger is the structured logger the migrator reports stage transitions to.
// The args follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards everything.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// FilesystemManager gives the migrator read access to project directories.
type FilesystemManager interface {
	// Resolve makes rawPath absolute and records whether it exists.
	// Symlinks are followed. A missing path is not an error; devices,
	// pipes and sockets are.
	Resolve(rawPath string) (*Path, error)

	// ReadFile returns the whole content of a regular file.
	ReadFile(path string) ([]byte, error)

	// Exists reports whether path names a regular file.
	Exists(path string) (bool, error)
}

// AssetStore copies image assets byte-for-byte between project directories.
type AssetStore interface {
	// Copy copies the file at src to dst, which must not exist yet.
	// The returned AssetCopy describes what was written.
	Copy(src, dst string) (*AssetCopy, error)
}

// CommitMode selects how a staged project replaces its destination.
type CommitMode int

const (
	// CommitCreate renames the staging directory to a destination that does not exist.
	CommitCreate CommitMode = iota
	// CommitReplace swaps an existing destination out for the staging directory.
	CommitReplace
	// CommitInPlace renames each staged document over the destination's own
	// copy. Used when the destination is also the source.
	CommitInPlace
)

func (m CommitMode) String() string {
	switch m {
	case CommitCreate:
		return "create"
	case CommitReplace:
		return "replace"
	case CommitInPlace:
		return "in_place"
	default:
		return "unknown"
	}
}

// StagingArea hands out staging directories for migration output.
type StagingArea interface {
	// Create makes an empty staging directory on the same filesystem as
	// destination. runID keeps concurrent runs from colliding.
	Create(destination, runID string) (StagedProject, error)
}

// StagedProject is one run's output before it is committed.
type StagedProject interface {
	// Dir is the staging directory itself.
	Dir() string

	// WriteFile writes a document into the staging directory.
	WriteFile(name string, data []byte) error

	// Commit moves the staged output to its destination. The staging
	// directory no longer exists after a successful commit.
	Commit(mode CommitMode) error

	// Discard removes the staging directory. It is safe to call after a
	// successful Commit.
	Discard() error
}

// Journal records every migration run.
type Journal interface {
	// StartRun inserts run with status RunRunning.
	StartRun(run *Run) error

	// FinishRun stores the final status, stage and counts of run.
	FinishRun(run *Run) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	Close() error
}
