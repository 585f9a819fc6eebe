// Package storage persists uploaded files on local disk or in an S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/filechat/backend/internal/models"
)

// Backend is the storage medium currently active for persistence. Exactly one
// implementation is selected at start-up.
type Backend interface {
	// Save writes r under name, replacing any existing file of that name.
	Save(ctx context.Context, name string, r io.Reader) (*models.StoredFile, error)
	List(ctx context.Context) ([]*models.StoredFile, error)
	Stat(ctx context.Context, name string) (*models.FileMetadata, error)
	// ResolveURL builds the location of name without checking it exists.
	ResolveURL(name string) string
	Kind() models.BackendKind
}

// Validation errors. Nothing is written when one of these is returned.
var (
	ErrInvalidFilename     = errors.New("invalid filename")
	ErrDisallowedExtension = errors.New("file type not allowed")
)

// ErrNotFound is returned by Stat when the file does not exist.
var ErrNotFound = errors.New("file not found")

// StorageError wraps a local I/O or remote transfer failure.
type StorageError struct {
	Op      string
	Name    string
	Backend models.BackendKind
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Name, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err rejects the upload itself rather
// than signalling a storage failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidFilename) || errors.Is(err, ErrDisallowedExtension)
}
