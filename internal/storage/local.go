package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/filechat/backend/internal/models"
)

// LocalStore implements Backend using a flat directory on the local
// filesystem. The directory listing is the index; there is no manifest.
type LocalStore struct {
	uploadDir string
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStore{uploadDir: uploadDir}, nil
}

// Dir returns the upload directory.
func (s *LocalStore) Dir() string {
	return s.uploadDir
}

// Kind implements Backend.
func (s *LocalStore) Kind() models.BackendKind {
	return models.BackendLocal
}

// Path returns the absolute path for name. Names that would escape the
// upload directory are rejected.
func (s *LocalStore) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return filepath.Join(s.uploadDir, name), nil
}

// Save writes the file to disk. Concurrent writers of the same name race and
// the last one wins.
func (s *LocalStore) Save(_ context.Context, name string, r io.Reader) (*models.StoredFile, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, s.wrap("create", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, s.wrap("write", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, s.wrap("close", name, err)
	}

	return &models.StoredFile{
		Name:     name,
		Location: path,
		Backend:  models.BackendLocal,
	}, nil
}

// List returns every regular file in the upload directory, sorted by name.
func (s *LocalStore) List(_ context.Context) ([]*models.StoredFile, error) {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return nil, s.wrap("list", s.uploadDir, err)
	}

	files := make([]*models.StoredFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		files = append(files, &models.StoredFile{
			Name:     entry.Name(),
			Location: filepath.Join(s.uploadDir, entry.Name()),
			Backend:  models.BackendLocal,
		})
	}
	return files, nil
}

// Stat returns size and modification time of name.
func (s *LocalStore) Stat(_ context.Context, name string) (*models.FileMetadata, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, s.wrap("stat", name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return &models.FileMetadata{
		Name:    name,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ResolveURL returns the local path of name.
func (s *LocalStore) ResolveURL(name string) string {
	return filepath.Join(s.uploadDir, name)
}

// Remove deletes name. A missing file is not an error.
func (s *LocalStore) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s.wrap("remove", name, err)
	}
	return nil
}

func (s *LocalStore) wrap(op, name string, err error) error {
	return &StorageError{Op: op, Name: name, Backend: models.BackendLocal, Err: err}
}
