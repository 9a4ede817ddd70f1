package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/learnable-ai/companion/internal/errs"
)

// Blob is the metadata of a stored file body.
type Blob struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Path     string    `json:"-"`
	StoredAt time.Time `json:"storedAt"`
}

// Store holds the bytes of queued files until they are sent to the backend.
type Store interface {
	Save(name string, r io.Reader) (*Blob, error)
	Get(id string) (*Blob, error)
	Open(id string) (io.ReadCloser, error)
	Delete(id string) error
}

// LocalStore implements Store using the local filesystem.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	blobs     map[string]*Blob
	maxSize   int64
}

// NewLocalStore creates a new LocalStore rooted at uploadDir.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStore{
		uploadDir: uploadDir,
		blobs:     make(map[string]*Blob),
	}, nil
}

// WithMaxSize caps how many bytes Save accepts per file. Zero disables the cap.
func (s *LocalStore) WithMaxSize(n int64) *LocalStore {
	s.maxSize = n
	return s
}

// Save writes r to a new file and registers it.
func (s *LocalStore) Save(name string, r io.Reader) (*Blob, error) {
	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}

	size, err := io.Copy(f, src)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}
	if s.maxSize > 0 && size > s.maxSize {
		os.Remove(path)
		return nil, fmt.Errorf("writing file %s: %w", name, errs.ErrFileTooLarge)
	}

	blob := &Blob{
		ID:       id,
		Name:     name,
		Size:     size,
		Path:     path,
		StoredAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = blob

	return blob, nil
}

// Get retrieves blob metadata by ID.
func (s *LocalStore) Get(id string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, id)
	}

	return blob, nil
}

// Open returns a reader over the stored bytes.
func (s *LocalStore) Open(id string) (io.ReadCloser, error) {
	blob, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(blob.Path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

// Delete removes a blob from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok := s.blobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrFileNotFound, id)
	}

	if err := os.Remove(blob.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.blobs, id)
	return nil
}
