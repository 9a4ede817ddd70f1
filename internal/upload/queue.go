// Package upload keeps the list of validated files waiting to be sent.
//
// The queue appends: every accepted file is kept until it is removed or the
// queue is cleared. Routing picks the first file of each media category.
package upload

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/storage"
	"github.com/learnable-ai/companion/internal/validate"
	"go.uber.org/zap"
)

// Incoming is one file from a picker or drop event.
type Incoming struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Rejection records why a file was not queued.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Queue holds validated files with per-file status.
type Queue struct {
	mu        sync.RWMutex
	files     []*models.UploadedFile
	store     storage.Store
	validator *validate.Validator
	observers []func([]models.UploadedFile)
}

// NewQueue creates an empty queue backed by store.
func NewQueue(store storage.Store, validator *validate.Validator) *Queue {
	if validator == nil {
		validator = validate.New(validate.DefaultMaxFileSize)
	}
	return &Queue{
		store:     store,
		validator: validator,
	}
}

// OnChange registers fn to be called with a snapshot after every mutation.
func (q *Queue) OnChange(fn func([]models.UploadedFile)) {
	q.mu.Lock()
	q.observers = append(q.observers, fn)
	q.mu.Unlock()
}

// Add validates and stores one file. Invalid files are logged and skipped;
// the returned Rejection carries the reason.
func (q *Queue) Add(in Incoming) (*models.UploadedFile, *Rejection, error) {
	const funcName = "Queue.Add"

	res := q.validator.Validate(in.Name, in.Size)
	if !res.Valid {
		logger.Warn("file rejected",
			zap.String("function", funcName),
			zap.String("name", in.Name),
			zap.Int64("size", in.Size),
			zap.String("reason", res.Reason),
		)
		return nil, &Rejection{Name: in.Name, Reason: res.Reason}, nil
	}

	blob, err := q.store.Save(in.Name, in.Reader)
	if err != nil {
		logger.Error("failed to store file",
			zap.String("function", funcName),
			zap.String("name", in.Name),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("storing %s: %w", in.Name, err)
	}

	file := &models.UploadedFile{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Size:      blob.Size,
		MimeType:  validate.MimeTypeOf(res.Extension),
		Extension: res.Extension,
		Category:  res.Category,
		Status:    models.FileStatusPending,
		Path:      blob.ID,
	}

	q.mu.Lock()
	q.files = append(q.files, file)
	q.mu.Unlock()

	logger.Debug("file queued",
		zap.String("function", funcName),
		zap.String("id", file.ID),
		zap.String("name", file.Name),
		zap.String("category", string(file.Category)),
	)

	q.notify()
	out := *file
	return &out, nil, nil
}

// AddMany queues a batch, as delivered by a multi-select or drop event.
func (q *Queue) AddMany(batch []Incoming) ([]models.UploadedFile, []Rejection, error) {
	var (
		added    []models.UploadedFile
		rejected []Rejection
	)
	for _, in := range batch {
		f, rej, err := q.Add(in)
		if err != nil {
			return added, rejected, err
		}
		if rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		added = append(added, *f)
	}
	return added, rejected, nil
}

// List returns a snapshot of the queue in insertion order.
func (q *Queue) List() []models.UploadedFile {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.snapshotLocked()
}

// Len returns the number of queued files.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.files)
}

// Get returns a queued file by ID.
func (q *Queue) Get(id string) (models.UploadedFile, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, f := range q.files {
		if f.ID == id {
			return *f, true
		}
	}
	return models.UploadedFile{}, false
}

// Open returns the stored bytes of a queued file.
func (q *Queue) Open(id string) (io.ReadCloser, error) {
	f, ok := q.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrFileNotFound, id)
	}
	return q.store.Open(f.Path)
}

// Remove drops a file from the queue and deletes its bytes.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	idx := -1
	for i, f := range q.files {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s", errs.ErrFileNotFound, id)
	}
	blobID := q.files[idx].Path
	q.files = append(q.files[:idx], q.files[idx+1:]...)
	q.mu.Unlock()

	if err := q.store.Delete(blobID); err != nil {
		logger.Warn("failed to delete stored file", zap.String("id", id), zap.Error(err))
	}
	q.notify()
	return nil
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	files := q.files
	q.files = nil
	q.mu.Unlock()

	for _, f := range files {
		if err := q.store.Delete(f.Path); err != nil {
			logger.Warn("failed to delete stored file", zap.String("id", f.ID), zap.Error(err))
		}
	}
	q.notify()
}

// SetStatus updates the transfer status of a queued file.
func (q *Queue) SetStatus(id string, status models.FileStatus, progress int, errMsg string) {
	q.mu.Lock()
	found := false
	for _, f := range q.files {
		if f.ID == id {
			f.Status = status
			f.Progress = clampPercent(progress)
			f.Error = errMsg
			found = true
			break
		}
	}
	q.mu.Unlock()

	if found {
		q.notify()
	}
}

// FirstOfEachCategory returns at most one file per media category, the
// earliest queued one. Later files of the same category are ignored.
func (q *Queue) FirstOfEachCategory() map[models.MediaCategory]models.UploadedFile {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make(map[models.MediaCategory]models.UploadedFile, 3)
	for _, f := range q.files {
		if _, seen := out[f.Category]; seen {
			continue
		}
		out[f.Category] = *f
	}
	return out
}

func (q *Queue) snapshotLocked() []models.UploadedFile {
	out := make([]models.UploadedFile, len(q.files))
	for i, f := range q.files {
		out[i] = *f
	}
	return out
}

func (q *Queue) notify() {
	q.mu.RLock()
	snap := q.snapshotLocked()
	observers := make([]func([]models.UploadedFile), len(q.observers))
	copy(observers, q.observers)
	q.mu.RUnlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
