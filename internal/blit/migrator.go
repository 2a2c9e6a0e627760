package blit

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/beevik/etree"

	"blit-migrate/internal/document"
	mErrors "blit-migrate/internal/errors"
	"blit-migrate/internal/model"
	"blit-migrate/internal/transform"
)

// assetExt is the file extension of cel images inside a project directory.
const assetExt = ".png"

// Migrator upgrades version-1 blit project directories to version 2.
//
// Output is written to a staging directory next to the destination and moved
// into place only once every document and asset is there, so a failed run
// leaves the destination as it was.
type Migrator struct {
	fsmgr   FilesystemManager
	staging StagingArea
	assets  AssetStore
	journal Journal
	logger  Logger
	clock   Clock
	idgen   IDGenerator
}

// NewMigrator creates a Migrator with the provided dependencies.
func NewMigrator(fsmgr FilesystemManager, staging StagingArea, assets AssetStore, journal Journal, logger Logger, clock Clock, idgen IDGenerator) *Migrator {
	return &Migrator{
		fsmgr:   fsmgr,
		staging: staging,
		assets:  assets,
		journal: journal,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
	}
}

// Migrate runs one migration from opts.Source to opts.Destination.
//
// Failures are returned as *errors.MigrationError with Stage set to the stage
// that failed, except for cancellation of ctx, which is returned wrapped as is.
// Every call is journaled, including failed ones.
func (m *Migrator) Migrate(ctx context.Context, opts MigrateOptions) (*MigrationResult, error) {
	runID := opts.RunID
	if runID == "" {
		runID = m.idgen.New()
	}

	run := &Run{
		ID:          runID,
		Source:      opts.Source,
		Destination: opts.Destination,
		Overwrite:   opts.Overwrite,
		DryRun:      opts.DryRun,
		Status:      RunRunning,
		Stage:       StageValidate,
		StartedAt:   m.clock.Now(),
	}
	if err := m.journal.StartRun(run); err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}

	m.logger.Info("migration started", "source", opts.Source, "destination", opts.Destination,
		"overwrite", opts.Overwrite, "dry_run", opts.DryRun)

	mg := &migration{Migrator: m, opts: opts, run: run}
	result, err := mg.execute(ctx)

	run.FinishedAt = m.clock.Now()
	if err != nil {
		run.Status = RunFailed
		run.ErrorMessage = err.Error()
		if mErr, ok := mErrors.As(err); ok {
			run.ErrorKind = string(mErr.Kind)
		}
		m.logger.Error("migration failed", "stage", run.Stage, "error", err)
	} else {
		run.Status = RunSucceeded
		result.Duration = run.Duration()
		m.logger.Info("migration finished", "cels", result.CelCount, "frames", result.FrameCount,
			"assets", len(result.Assets), "duration", result.Duration)
	}

	if jerr := m.journal.FinishRun(run); jerr != nil {
		m.logger.Warn("recording run outcome failed", "error", jerr)
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

// migration holds the state of a single run as it moves through the stages.
type migration struct {
	*Migrator
	opts MigrateOptions
	run  *Run

	source      *Path
	destination *Path
	sameDir     bool

	sequence *etree.Document
	palette  *etree.Document
	v1       *model.V1Animation
	v2       *model.V2Animation
	plan     []AssetCopy
	staged   StagedProject
}

type step struct {
	stage Stage
	run   func(ctx context.Context) error
}

func (mg *migration) execute(ctx context.Context) (result *MigrationResult, err error) {
	defer func() {
		if err != nil && mg.staged != nil {
			if derr := mg.staged.Discard(); derr != nil {
				mg.logger.Warn("removing staging directory failed", "dir", mg.staged.Dir(), "error", derr)
			}
		}
	}()

	steps := []step{
		{StageValidate, mg.validate},
		{StageRead, mg.read},
		{StageParse, mg.parse},
		{StageTransform, mg.transform},
	}
	if !mg.opts.DryRun {
		steps = append(steps,
			step{StageWriteDocuments, mg.writeDocuments},
			step{StageCopyAssets, mg.copyAssets},
			step{StageCommit, mg.commit},
		)
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("migration interrupted before %s: %w", s.stage, err)
		}
		mg.enter(s.stage)
		if err := s.run(ctx); err != nil {
			return nil, mg.fail(err)
		}
	}
	mg.enter(StageDone)

	return &MigrationResult{
		RunID:       mg.run.ID,
		Source:      mg.source.String(),
		Destination: mg.destination.String(),
		CelCount:    len(mg.v2.Cels),
		FrameCount:  len(mg.v2.Frames),
		Assets:      mg.plan,
		DryRun:      mg.opts.DryRun,
	}, nil
}

func (mg *migration) enter(stage Stage) {
	mg.run.Stage = stage
	mg.logger.Debug("stage entered", "stage", stage)
}

// fail stamps the current stage onto a MigrationError.
func (mg *migration) fail(err error) error {
	if mErr, ok := mErrors.As(err); ok && mErr.Stage == "" {
		mErr.Stage = string(mg.run.Stage)
	}
	return err
}

func (mg *migration) validate(context.Context) error {
	src, err := mg.fsmgr.Resolve(mg.opts.Source)
	if err != nil {
		return mErrors.NewInvalidSourcePath(mg.opts.Source, err.Error())
	}
	if !src.Exists() {
		return mErrors.NewInvalidSourcePath(src.String(), "does not exist")
	}
	if !src.IsDir() {
		return mErrors.NewInvalidSourcePath(src.String(), "not a directory")
	}

	var missing []string
	for _, name := range []string{document.SequenceFile, document.PaletteFile} {
		ok, err := mg.fsmgr.Exists(src.Join(name))
		if err != nil {
			return mErrors.NewInvalidSourcePath(src.Join(name), err.Error())
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return mErrors.NewMissingDocuments(src.String(), missing)
	}

	dst, err := mg.fsmgr.Resolve(mg.opts.Destination)
	if err != nil {
		return mErrors.NewDestinationConflict(mg.opts.Destination, err.Error())
	}
	if dst.Exists() {
		if !dst.IsDir() {
			return mErrors.NewDestinationConflict(dst.String(), "exists and is not a directory")
		}
		if !mg.opts.Overwrite {
			return mErrors.NewDestinationConflict(dst.String(), "already exists (use overwrite to replace it)")
		}
	}

	mg.source, mg.destination = src, dst
	mg.sameDir = src.Same(dst)
	mg.run.Source, mg.run.Destination = src.String(), dst.String()
	return nil
}

// read loads both documents. The sequence must declare version 1 before the
// palette is even opened.
func (mg *migration) read(context.Context) error {
	seq, err := mg.readDocument(document.SequenceFile)
	if err != nil {
		return err
	}
	if err := document.RequireVersion(seq.Root(), document.SequenceFile, 1); err != nil {
		return err
	}

	pal, err := mg.readDocument(document.PaletteFile)
	if err != nil {
		return err
	}
	if err := document.RequireVersion(pal.Root(), document.PaletteFile, 1); err != nil {
		return err
	}

	mg.sequence, mg.palette = seq, pal
	return nil
}

func (mg *migration) readDocument(name string) (*etree.Document, error) {
	path := mg.source.Join(name)
	data, err := mg.fsmgr.ReadFile(path)
	if err != nil {
		return nil, mErrors.NewInvalidSourcePath(path, fmt.Sprintf("reading document: %v", err))
	}
	mg.logger.Debug("document read", "path", path, "bytes", len(data))
	return document.Parse(data, name)
}

func (mg *migration) parse(context.Context) error {
	v1, err := document.BuildV1(mg.sequence.Root())
	if err != nil {
		return err
	}
	mg.v1 = v1
	return nil
}

func (mg *migration) transform(context.Context) error {
	mg.v2 = transform.ToV2(mg.v1)
	document.StampVersion(mg.palette.Root(), 2)

	if !mg.sameDir {
		names := mg.v2.CelNames()
		mg.plan = make([]AssetCopy, 0, len(names))
		for _, name := range names {
			file := name + assetExt
			mg.plan = append(mg.plan, AssetCopy{
				Name:        file,
				Source:      mg.source.Join(file),
				Destination: mg.destination.Join(file),
			})
		}
	}

	mg.run.CelCount = len(mg.v2.Cels)
	mg.run.FrameCount = len(mg.v2.Frames)
	mg.run.AssetCount = len(mg.plan)
	mg.logger.Info("project transformed", "cels", mg.run.CelCount, "frames", mg.run.FrameCount,
		"assets", mg.run.AssetCount)
	return nil
}

func (mg *migration) writeDocuments(context.Context) error {
	seqData, err := document.EncodeV2(mg.v2)
	if err != nil {
		return mErrors.NewWriteFailure("encoding "+document.SequenceFile, err)
	}
	palData, err := document.EncodePalette(mg.palette.Root())
	if err != nil {
		return mErrors.NewWriteFailure("encoding "+document.PaletteFile, err)
	}

	staged, err := mg.staging.Create(mg.destination.String(), mg.run.ID)
	if err != nil {
		return mErrors.NewWriteFailure("creating staging directory", err)
	}
	mg.staged = staged
	mg.logger.Debug("staging directory created", "dir", staged.Dir())

	for _, doc := range []struct {
		name string
		data []byte
	}{
		{document.SequenceFile, seqData},
		{document.PaletteFile, palData},
	} {
		if err := staged.WriteFile(doc.name, doc.data); err != nil {
			return mErrors.NewWriteFailure("writing "+doc.name, err)
		}
	}
	return nil
}

func (mg *migration) copyAssets(ctx context.Context) error {
	if mg.sameDir {
		mg.logger.Info("source is the destination, assets left in place")
		return nil
	}

	for i := range mg.plan {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("copying assets: %w", err)
		}
		a := &mg.plan[i]
		copied, err := mg.assets.Copy(a.Source, filepath.Join(mg.staged.Dir(), a.Name))
		if err != nil {
			return mErrors.NewAssetCopyFailure(a.Name, err)
		}
		a.Size, a.Checksum = copied.Size, copied.Checksum
		mg.logger.Debug("asset copied", "asset", a.Name, "size", a.Size, "sha256", a.Checksum)
	}
	return nil
}

func (mg *migration) commit(context.Context) error {
	mode := CommitCreate
	switch {
	case mg.sameDir:
		mode = CommitInPlace
	case mg.destination.Exists():
		mode = CommitReplace
	}

	if err := mg.staged.Commit(mode); err != nil {
		return mErrors.NewWriteFailure("committing "+mg.destination.String(), err)
	}
	mg.logger.Info("destination committed", "destination", mg.destination.String(), "mode", mode)
	return nil
}
