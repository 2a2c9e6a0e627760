package blit

import "time"

// Stage is a step of the migration state machine. A run moves through the
// stages in declaration order and stops at StageDone or at the first failure.
type Stage string

const (
	StageValidate       Stage = "validate"
	StageRead           Stage = "read"
	StageParse          Stage = "parse"
	StageTransform      Stage = "transform"
	StageWriteDocuments Stage = "write_documents"
	StageCopyAssets     Stage = "copy_assets"
	StageCommit         Stage = "commit"
	StageDone           Stage = "done"
)

// RunStatus is the journaled outcome of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is the journal record of one Migrate call.
type Run struct {
	ID          string
	Source      string
	Destination string
	Overwrite   bool
	DryRun      bool
	Status      RunStatus
	// Stage is the last stage the run entered.
	Stage        Stage
	ErrorKind    string
	ErrorMessage string
	CelCount     int
	FrameCount   int
	AssetCount   int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration is the wall time of a finished run.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// MigrateOptions are the inputs of one migration.
type MigrateOptions struct {
	Source      string
	Destination string
	// Overwrite permits replacing an existing destination.
	Overwrite bool
	// DryRun stops after the transform and reports what would be written.
	DryRun bool
	// RunID is used as the run identifier when set; otherwise one is generated.
	RunID string
}

// AssetCopy describes one image asset carried into the destination.
type AssetCopy struct {
	Name        string
	Source      string
	Destination string
	Size        int64
	// Checksum is the hex SHA-256 of the copied bytes. Empty for dry runs.
	Checksum string
}

// MigrationResult summarizes a successful (or dry) run.
type MigrationResult struct {
	RunID       string
	Source      string
	Destination string
	CelCount    int
	FrameCount  int
	Assets      []AssetCopy
	DryRun      bool
	Duration    time.Duration
}
