package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a migration failure.
type Kind string

const (
	ErrInvalidSourcePath   Kind = "INVALID_SOURCE_PATH"   // exit 2
	ErrUnsupportedVersion  Kind = "UNSUPPORTED_VERSION"   // exit 3
	ErrMalformedDocument   Kind = "MALFORMED_DOCUMENT"    // exit 4
	ErrDestinationConflict Kind = "DESTINATION_CONFLICT"  // exit 5
	ErrWriteFailure        Kind = "WRITE_FAILURE"         // exit 6
	ErrAssetCopyFailure    Kind = "ASSET_COPY_FAILURE"    // exit 7
)

// MigrationError is a fatal, structured migration failure.
// Stage is filled in by the migration driver once the failing step is known.
type MigrationError struct {
	Kind    Kind
	Stage   string
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *MigrationError) Unwrap() error {
	return e.Err
}

// ExitCode maps the error kind to a process exit status.
func (e *MigrationError) ExitCode() int {
	switch e.Kind {
	case ErrInvalidSourcePath:
		return 2
	case ErrUnsupportedVersion:
		return 3
	case ErrMalformedDocument:
		return 4
	case ErrDestinationConflict:
		return 5
	case ErrWriteFailure:
		return 6
	case ErrAssetCopyFailure:
		return 7
	default:
		return 1
	}
}

// NewInvalidSourcePath creates an error for a source that is not a usable project directory.
func NewInvalidSourcePath(path, msg string) *MigrationError {
	return &MigrationError{
		Kind:    ErrInvalidSourcePath,
		Message: fmt.Sprintf("%s: %s", path, msg),
		Details: map[string]any{"path": path},
	}
}

// NewMissingDocuments creates an InvalidSourcePath error listing every missing document.
func NewMissingDocuments(dir string, missing []string) *MigrationError {
	return &MigrationError{
		Kind:    ErrInvalidSourcePath,
		Message: fmt.Sprintf("%v not found in %s", missing, dir),
		Details: map[string]any{"path": dir, "missing": missing},
	}
}

// NewUnsupportedVersion creates an error for a document that does not declare the expected version.
// found is the raw attribute value; empty means the attribute was missing.
func NewUnsupportedVersion(document, found string, want int) *MigrationError {
	msg := fmt.Sprintf("%s declares version %q, want %d", document, found, want)
	if found == "" {
		msg = fmt.Sprintf("%s has no version attribute, want %d", document, want)
	}
	return &MigrationError{
		Kind:    ErrUnsupportedVersion,
		Message: msg,
		Details: map[string]any{"document": document, "found": found, "want": want},
	}
}

// NewMalformedDocument creates an error for unparseable XML or a missing/invalid field.
// path locates the offending element, e.g. "animation/xsheet/frame[2]".
func NewMalformedDocument(path, msg string) *MigrationError {
	return &MigrationError{
		Kind:    ErrMalformedDocument,
		Message: fmt.Sprintf("%s: %s", path, msg),
		Details: map[string]any{"path": path},
	}
}

// NewDestinationConflict creates an error for an existing destination without overwrite permission.
func NewDestinationConflict(path, msg string) *MigrationError {
	return &MigrationError{
		Kind:    ErrDestinationConflict,
		Message: fmt.Sprintf("%s: %s", path, msg),
		Details: map[string]any{"path": path},
	}
}

// NewWriteFailure wraps a failure to write migrated documents or commit the destination.
func NewWriteFailure(msg string, err error) *MigrationError {
	return &MigrationError{
		Kind:    ErrWriteFailure,
		Message: msg,
		Err:     err,
	}
}

// NewAssetCopyFailure wraps a failure to copy a cel image.
func NewAssetCopyFailure(asset string, err error) *MigrationError {
	return &MigrationError{
		Kind:    ErrAssetCopyFailure,
		Message: fmt.Sprintf("copying %s", asset),
		Details: map[string]any{"asset": asset},
		Err:     err,
	}
}

// Is reports whether err is, or wraps, a MigrationError of the given kind.
func Is(err error, kind Kind) bool {
	var mErr *MigrationError
	if stderrors.As(err, &mErr) {
		return mErr.Kind == kind
	}
	return false
}

// As returns the MigrationError carried by err, if any.
func As(err error) (*MigrationError, bool) {
	var mErr *MigrationError
	if stderrors.As(err, &mErr) {
		return mErr, true
	}
	return nil, false
}
