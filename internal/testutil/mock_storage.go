// mock_storage.go - In-memory storage backend for testing
package testutil

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/filechat/backend/internal/models"
	"github.com/filechat/backend/internal/storage"
)

// ErrMockFailure is returned by MockStore operations that were told to fail.
var ErrMockFailure = errors.New("mock storage failure")

// MockStore implements storage.Backend in memory
type MockStore struct {
	kind     models.BackendKind
	files    map[string][]byte
	modTimes map[string]time.Time
	mu       sync.RWMutex

	// Failure switches
	FailSave bool
	FailList bool
	FailStat map[string]bool
}

// NewMockStore creates an empty local-kind mock store
func NewMockStore() *MockStore {
	return NewMockStoreOfKind(models.BackendLocal)
}

// NewMockStoreOfKind creates an empty mock store reporting kind
func NewMockStoreOfKind(kind models.BackendKind) *MockStore {
	return &MockStore{
		kind:     kind,
		files:    make(map[string][]byte),
		modTimes: make(map[string]time.Time),
		FailStat: make(map[string]bool),
	}
}

// AddFile stores data under name with the given modification time
func (m *MockStore) AddFile(name string, data []byte, modTime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	m.modTimes[name] = modTime
}

// Data returns the stored bytes of name
func (m *MockStore) Data(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	return data, ok
}

// Count returns the number of stored files
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

func (m *MockStore) Kind() models.BackendKind {
	return m.kind
}

func (m *MockStore) Save(ctx context.Context, name string, r io.Reader) (*models.StoredFile, error) {
	if m.FailSave {
		return nil, &storage.StorageError{Op: "save", Name: name, Backend: m.kind, Err: ErrMockFailure}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.AddFile(name, data, time.Now())
	return m.stored(name), nil
}

func (m *MockStore) List(ctx context.Context) ([]*models.StoredFile, error) {
	if m.FailList {
		return nil, &storage.StorageError{Op: "list", Backend: m.kind, Err: ErrMockFailure}
	}
	m.mu.RLock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	m.mu.RUnlock()

	sort.Strings(names)
	files := make([]*models.StoredFile, len(names))
	for i, name := range names {
		files[i] = m.stored(name)
	}
	return files, nil
}

func (m *MockStore) Stat(ctx context.Context, name string) (*models.FileMetadata, error) {
	if m.FailStat[name] {
		return nil, &storage.StorageError{Op: "stat", Name: name, Backend: m.kind, Err: ErrMockFailure}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	if !ok {
		return nil, &storage.StorageError{Op: "stat", Name: name, Backend: m.kind, Err: storage.ErrNotFound}
	}
	return &models.FileMetadata{Name: name, Size: int64(len(data)), ModTime: m.modTimes[name]}, nil
}

func (m *MockStore) ResolveURL(name string) string {
	if m.kind == models.BackendRemote {
		return "https://mock-bucket.s3.amazonaws.com/" + name
	}
	return "/mock/uploads/" + name
}

func (m *MockStore) stored(name string) *models.StoredFile {
	return &models.StoredFile{Name: name, Location: m.ResolveURL(name), Backend: m.kind}
}

var _ storage.Backend = (*MockStore)(nil)
