// mock_storage.go - In-memory storage.Store for tests
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/storage"
)

// MockStorage implements storage.Store in memory.
type MockStorage struct {
	mu      sync.RWMutex
	blobs   map[string]*storage.Blob
	data    map[string][]byte
	counter int

	// SaveErr, when set, is returned by every Save call once SaveErrAfter
	// saves have succeeded.
	SaveErr      error
	SaveErrAfter int
}

// NewMockStorage creates an empty mock store.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		blobs: make(map[string]*storage.Blob),
		data:  make(map[string][]byte),
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*storage.Blob, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil && m.counter >= m.SaveErrAfter {
		return nil, m.SaveErr
	}

	m.counter++
	id := fmt.Sprintf("blob-%d", m.counter)
	blob := &storage.Blob{
		ID:       id,
		Name:     name,
		Size:     int64(len(data)),
		Path:     "mem://" + id,
		StoredAt: time.Now(),
	}
	m.blobs[id] = blob
	m.data[id] = data
	return blob, nil
}

func (m *MockStorage) Get(id string) (*storage.Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, id)
	}
	return blob, nil
}

func (m *MockStorage) Open(id string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, id)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[id]; !ok {
		return fmt.Errorf("%w: %s", errs.ErrFileNotFound, id)
	}
	delete(m.blobs, id)
	delete(m.data, id)
	return nil
}

// BlobCount returns how many blobs are currently stored.
func (m *MockStorage) BlobCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
