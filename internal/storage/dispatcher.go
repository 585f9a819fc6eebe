package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/filechat/backend/internal/metrics"
	"github.com/filechat/backend/internal/models"
)

// Dispatcher validates uploads and hands them to the active Backend. It never
// branches on the storage mode; the backend is fixed at construction.
type Dispatcher struct {
	backend Backend
	allowed ExtensionSet
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher over backend accepting only the given
// extensions.
func NewDispatcher(backend Backend, allowedExtensions []string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		backend: backend,
		allowed: NewExtensionSet(allowedExtensions),
		logger:  logger.With("component", "storage", "backend", string(backend.Kind())),
	}
}

// Kind returns the active backend kind.
func (d *Dispatcher) Kind() models.BackendKind {
	return d.backend.Kind()
}

// Validate sanitizes filename and checks its extension.
func (d *Dispatcher) Validate(filename string) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	if !d.allowed.Allows(name) {
		return "", fmt.Errorf("%w: %q", ErrDisallowedExtension, filename)
	}
	return name, nil
}

// Store validates filename and persists r through the backend.
func (d *Dispatcher) Store(ctx context.Context, filename string, r io.Reader) (*models.StoredFile, error) {
	name, err := d.Validate(filename)
	if err != nil {
		d.logger.Warn("upload rejected", "filename", filename, "error", err)
		metrics.RecordUpload(d.backend.Kind(), metrics.ResultRejected)
		return nil, err
	}

	file, err := d.backend.Save(ctx, name, r)
	if err != nil {
		d.logger.Error("failed to store file", "file", name, "error", err)
		metrics.RecordUpload(d.backend.Kind(), metrics.ResultFailed)
		return nil, err
	}

	d.logger.Info("file stored", "file", file.Name, "location", file.Location)
	metrics.RecordUpload(d.backend.Kind(), metrics.ResultStored)
	return file, nil
}

// List enumerates stored files.
func (d *Dispatcher) List(ctx context.Context) ([]*models.StoredFile, error) {
	files, err := d.backend.List(ctx)
	if err != nil {
		d.logger.Error("failed to list files", "error", err)
		return nil, err
	}
	d.logger.Debug("listed files", "count", len(files))
	return files, nil
}

// Names returns the names of stored files, or nil when listing fails.
func (d *Dispatcher) Names(ctx context.Context) []string {
	files, err := d.List(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

// Stat returns size and modification time of name.
func (d *Dispatcher) Stat(ctx context.Context, name string) (*models.FileMetadata, error) {
	return d.backend.Stat(ctx, name)
}

// ResolveURL returns the local path or object URL of name.
func (d *Dispatcher) ResolveURL(name string) string {
	return d.backend.ResolveURL(name)
}

// Locate is ResolveURL for names coming from a request: only names that
// survive sanitization unchanged are resolved.
func (d *Dispatcher) Locate(name string) (string, error) {
	if name == "" || SanitizeFilename(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return d.backend.ResolveURL(name), nil
}
