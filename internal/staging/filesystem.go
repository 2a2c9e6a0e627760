// Package staging holds migration output in a directory next to its
// destination until the run is ready to commit.
//
// The staging directory is a hidden sibling of the destination, so the final
// move is a rename within one filesystem:
//
//	<parent>/
//	  .<dest>.blitmigrate-<runID>/      (staged output)
//	  .<dest>.blitmigrate-old-<runID>/  (previous destination during a swap)
//	  <dest>/
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"blit-migrate/internal/blit"
)

const (
	stagingTag = ".blitmigrate-"
	asideTag   = ".blitmigrate-old-"
)

// IsStagingName reports whether a directory entry name was created by this
// package, either as a staging directory or as a set-aside destination.
func IsStagingName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, stagingTag)
}

// FileSystemStagingArea creates staging directories beside their destinations.
type FileSystemStagingArea struct {
	logger        blit.Logger
	keepOnFailure bool
}

// NewFileSystemStagingArea creates a staging area. With keepOnFailure set,
// Discard leaves the staging directory on disk for inspection.
func NewFileSystemStagingArea(logger blit.Logger, keepOnFailure bool) *FileSystemStagingArea {
	return &FileSystemStagingArea{logger: logger, keepOnFailure: keepOnFailure}
}

// Create makes an empty staging directory for destination.
// The destination's parent is created if needed.
func (s *FileSystemStagingArea) Create(destination, runID string) (blit.StagedProject, error) {
	destination = filepath.Clean(destination)
	parent, base := filepath.Split(destination)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return nil, fmt.Errorf("cannot stage for destination %q", destination)
	}

	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("creating destination parent: %w", err)
	}

	dir := filepath.Join(parent, "."+base+stagingTag+runID)
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	return &stagedDir{
		area:        s,
		dir:         dir,
		destination: destination,
		aside:       filepath.Join(parent, "."+base+asideTag+runID),
	}, nil
}

// stagedDir is one run's staging directory.
type stagedDir struct {
	area        *FileSystemStagingArea
	dir         string
	destination string
	aside       string
	committed   bool
}

func (d *stagedDir) Dir() string {
	return d.dir
}

// WriteFile writes data to name inside the staging directory using an atomic
// write (temp file + rename).
func (d *stagedDir) WriteFile(name string, data []byte) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("invalid staged file name %q", name)
	}

	tmpFile, err := os.CreateTemp(d.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(d.dir, name)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Commit moves the staged output to the destination.
func (d *stagedDir) Commit(mode blit.CommitMode) error {
	if d.committed {
		return fmt.Errorf("staging directory %s already committed", d.dir)
	}

	var err error
	switch mode {
	case blit.CommitCreate:
		err = d.commitCreate()
	case blit.CommitReplace:
		err = d.commitReplace()
	case blit.CommitInPlace:
		err = d.commitInPlace()
	default:
		err = fmt.Errorf("unknown commit mode %d", mode)
	}
	if err != nil {
		return err
	}

	d.committed = true
	return nil
}

func (d *stagedDir) commitCreate() error {
	if _, err := os.Lstat(d.destination); err == nil {
		return fmt.Errorf("destination %s appeared during the run", d.destination)
	}
	if err := os.Rename(d.dir, d.destination); err != nil {
		return fmt.Errorf("renaming staging directory into place: %w", err)
	}
	return nil
}

// commitReplace sets the current destination aside, renames the staging
// directory in, then removes the old tree. If the second rename fails the old
// destination is put back.
func (d *stagedDir) commitReplace() error {
	if err := os.Rename(d.destination, d.aside); err != nil {
		return fmt.Errorf("setting previous destination aside: %w", err)
	}

	if err := os.Rename(d.dir, d.destination); err != nil {
		if rerr := os.Rename(d.aside, d.destination); rerr != nil {
			return fmt.Errorf("renaming staging directory into place: %w (restoring previous destination from %s also failed: %v)",
				err, d.aside, rerr)
		}
		return fmt.Errorf("renaming staging directory into place: %w", err)
	}

	if err := os.RemoveAll(d.aside); err != nil {
		d.area.logger.Warn("removing previous destination failed", "path", d.aside, "error", err)
	}
	return nil
}

// commitInPlace renames each staged file over the destination's copy and
// removes the then empty staging directory. Files already in the destination
// that were not staged are left alone.
func (d *stagedDir) commitInPlace() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("reading staging directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		src := filepath.Join(d.dir, entry.Name())
		dst := filepath.Join(d.destination, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("replacing %s: %w", dst, err)
		}
	}

	if err := os.RemoveAll(d.dir); err != nil {
		d.area.logger.Warn("removing staging directory failed", "path", d.dir, "error", err)
	}
	return nil
}

// Discard removes the staging directory unless it has been committed.
func (d *stagedDir) Discard() error {
	if d.committed {
		return nil
	}
	if d.area.keepOnFailure {
		d.area.logger.Info("staging directory kept", "path", d.dir)
		return nil
	}
	if err := os.RemoveAll(d.dir); err != nil {
		return fmt.Errorf("removing staging directory: %w", err)
	}
	return nil
}

// Compile-time check that FileSystemStagingArea implements blit.StagingArea
var _ blit.StagingArea = (*FileSystemStagingArea)(nil)
