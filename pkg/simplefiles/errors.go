package simplefiles

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrUnauthorized indicates the request carries no usable identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the record is absent, the id is malformed, or the
	// requester may not see it. The three cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrValidationFailed indicates a malformed creation payload
	ErrValidationFailed = errors.New("validation failed")

	// ErrFolderHasNoContent indicates content was requested for a folder
	ErrFolderHasNoContent = errors.New("a folder has no contents")

	// ErrBlobNotFound indicates no bytes are stored under a key
	ErrBlobNotFound = errors.New("object not found")
)

// Validation failure reasons, in the order they are checked.
const (
	ReasonMissingName      = "Missing name"
	ReasonMissingType      = "Missing type"
	ReasonMissingData      = "Missing data"
	ReasonInvalidData      = "Invalid data"
	ReasonParentNotFound   = "Parent not found"
	ReasonParentNotAFolder = "Parent is not a folder"
)

// ValidationError carries the human-readable reason a creation payload was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrValidationFailed) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func newValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

// FileError represents a store-layer failure while operating on a file record
type FileError struct {
	FileID uuid.UUID
	Op     string
	Err    error
}

func (e *FileError) Error() string {
	if e.FileID == uuid.Nil {
		return fmt.Sprintf("file operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("file operation %s failed for file %s: %v", e.Op, e.FileID, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to raw byte storage
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
