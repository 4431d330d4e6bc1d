package cli

import (
	"errors"
	"io/fs"

	"github.com/aidanlsb/metafold/internal/metafield"
	"github.com/aidanlsb/metafold/internal/snapshot"
	"github.com/aidanlsb/metafold/internal/source"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Config errors
	ErrConfigInvalid = "CONFIG_INVALID"

	// Document errors
	ErrFileNotFound      = "FILE_NOT_FOUND"
	ErrFileReadError     = "FILE_READ_ERROR"
	ErrFileWriteError    = "FILE_WRITE_ERROR"
	ErrDocumentInvalid   = "DOCUMENT_INVALID"
	ErrContainerNotFound = "CONTAINER_NOT_FOUND"
	ErrFieldNotFound     = "FIELD_NOT_FOUND"
	ErrDuplicateKey      = "DUPLICATE_KEY"

	// Snapshot errors
	ErrSnapshotNotFound = "SNAPSHOT_NOT_FOUND"
	ErrSnapshotName     = "SNAPSHOT_NAME_INVALID"
	ErrDatabaseError    = "DATABASE_ERROR"
	ErrDatabaseVersion  = "DATABASE_VERSION_MISMATCH"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes.
const (
	WarnDroppedElements = "DROPPED_ELEMENTS"
	WarnUnknownKind     = "UNKNOWN_KIND"
	WarnDuplicateKey    = "DUPLICATE_KEY"
)

// errorCode maps a package error to its stable code, or fallback when the
// error carries no sentinel.
func errorCode(err error, fallback string) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrFileNotFound
	case errors.Is(err, source.ErrContainerNotFound):
		return ErrContainerNotFound
	case errors.Is(err, metafield.ErrDuplicateKey):
		return ErrDuplicateKey
	case errors.Is(err, snapshot.ErrNotFound):
		return ErrSnapshotNotFound
	case errors.Is(err, snapshot.ErrInvalidName):
		return ErrSnapshotName
	case errors.Is(err, snapshot.ErrVersionMismatch):
		return ErrDatabaseVersion
	default:
		return fallback
	}
}
