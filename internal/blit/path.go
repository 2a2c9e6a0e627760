package blit

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Path is an absolute filesystem path plus what was found there when it was
// resolved. Paths are created by FilesystemManager.Resolve.
type Path struct {
	absPath string
	info    fs.FileInfo
}

// NewPath creates a Path. info is nil when nothing exists at absPath.
func NewPath(absPath string, info fs.FileInfo) *Path {
	return &Path{absPath: absPath, info: info}
}

// String returns the absolute path.
func (p *Path) String() string {
	return p.absPath
}

// Exists reports whether anything existed at the path when it was resolved.
func (p *Path) Exists() bool {
	return p.info != nil
}

// IsDir reports whether the path was a directory when it was resolved.
func (p *Path) IsDir() bool {
	return p.info != nil && p.info.IsDir()
}

// Join returns the absolute path of name inside p.
func (p *Path) Join(name string) string {
	return filepath.Join(p.absPath, name)
}

// Same reports whether p and other name the same location. Existing paths
// are compared by file identity so that aliases of one directory match.
func (p *Path) Same(other *Path) bool {
	if p.absPath == other.absPath {
		return true
	}
	return p.info != nil && other.info != nil && os.SameFile(p.info, other.info)
}
