package blit

import (
	"fmt"
	"strings"

	"blit-migrate/internal/document"
	mErrors "blit-migrate/internal/errors"
	"blit-migrate/internal/model"
	"blit-migrate/internal/transform"
)

// ProjectInfo summarizes a project directory of either version.
type ProjectInfo struct {
	Path            string
	SequenceVersion string
	PaletteVersion  string
	Name            string
	Width           int
	Height          int
	FPS             int
	SeqLength       int
	CelCount        int
	FrameCount      int
	PlaneCount      int
	// MissingAssets lists cel images the sequence references but the
	// directory does not contain.
	MissingAssets []string
}

// Inspect reads the project at rawPath without modifying it.
func (m *Migrator) Inspect(rawPath string) (*ProjectInfo, error) {
	dir, err := m.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, mErrors.NewInvalidSourcePath(rawPath, err.Error())
	}
	if !dir.IsDir() {
		return nil, mErrors.NewInvalidSourcePath(dir.String(), "not a directory")
	}

	info := &ProjectInfo{Path: dir.String()}

	seqPath := dir.Join(document.SequenceFile)
	data, err := m.fsmgr.ReadFile(seqPath)
	if err != nil {
		return nil, mErrors.NewInvalidSourcePath(seqPath, fmt.Sprintf("reading document: %v", err))
	}
	seq, err := document.Parse(data, document.SequenceFile)
	if err != nil {
		return nil, err
	}
	info.SequenceVersion = strings.TrimSpace(document.Version(seq.Root()))

	var anim *model.V2Animation
	switch info.SequenceVersion {
	case "1":
		v1, err := document.BuildV1(seq.Root())
		if err != nil {
			return nil, err
		}
		anim = transform.ToV2(v1)
	case "2":
		if anim, err = document.ReadV2(seq.Root()); err != nil {
			return nil, err
		}
	default:
		return nil, mErrors.NewUnsupportedVersion(document.SequenceFile, info.SequenceVersion, 1)
	}

	info.Name = anim.Name
	info.Width, info.Height = anim.Width, anim.Height
	info.FPS, info.SeqLength = anim.XSheet.FPS, anim.XSheet.SeqLength
	info.CelCount = len(anim.Cels)
	info.FrameCount = len(anim.Frames)
	info.PlaneCount = len(anim.XSheet.Planes)

	for _, name := range anim.CelNames() {
		ok, err := m.fsmgr.Exists(dir.Join(name + assetExt))
		if err != nil {
			return nil, fmt.Errorf("checking asset %s: %w", name+assetExt, err)
		}
		if !ok {
			info.MissingAssets = append(info.MissingAssets, name+assetExt)
		}
	}

	palPath := dir.Join(document.PaletteFile)
	if ok, err := m.fsmgr.Exists(palPath); err == nil && ok {
		data, err := m.fsmgr.ReadFile(palPath)
		if err != nil {
			return nil, mErrors.NewInvalidSourcePath(palPath, fmt.Sprintf("reading document: %v", err))
		}
		pal, err := document.Parse(data, document.PaletteFile)
		if err != nil {
			return nil, err
		}
		info.PaletteVersion = strings.TrimSpace(document.Version(pal.Root()))
	}

	return info, nil
}

// History returns the most recent journaled runs, newest first.
func (m *Migrator) History(limit int) ([]*Run, error) {
	runs, err := m.journal.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}
