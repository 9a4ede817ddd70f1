// handlers_files.go - Upload queue handlers
package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/upload"
	"go.uber.org/zap"
)

// FilesHandlerImpl implements the FilesHandler interface
type FilesHandlerImpl struct {
	queue *upload.Queue
}

// NewFilesHandler creates a new files handler instance
func NewFilesHandler(queue *upload.Queue) FilesHandler {
	return &FilesHandlerImpl{queue: queue}
}

type uploadResponse struct {
	Added    []models.UploadedFile `json:"added"`
	Rejected []upload.Rejection    `json:"rejected"`
	Files    []models.UploadedFile `json:"files"`
}

// partialUploadError reports a batch that stopped part way. Files queued
// before the failure stay queued and are listed alongside the error.
type partialUploadError struct {
	*APIError
	uploadResponse
}

// HandleListFiles returns the queue in insertion order
func (h *FilesHandlerImpl) HandleListFiles(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"files": h.queue.List(),
	})
}

// HandleUploadFiles queues every "file" part of a multipart form. Files that
// fail validation are reported under "rejected" and not queued.
func (h *FilesHandlerImpl) HandleUploadFiles(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("expected multipart form data", err)
	}
	headers := form.File["file"]
	if len(headers) == 0 {
		return NewValidationError("file")
	}

	batch := make([]upload.Incoming, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return NewBadRequestError("failed to read uploaded file", err)
		}
		opened = append(opened, f)
		batch = append(batch, upload.Incoming{Name: fh.Filename, Size: fh.Size, Reader: f})
	}

	added, rejected, err := h.queue.AddMany(batch)
	resp := uploadResponse{
		Added:    nonNilFiles(added),
		Rejected: rejected,
		Files:    nonNilFiles(h.queue.List()),
	}
	if resp.Rejected == nil {
		resp.Rejected = []upload.Rejection{}
	}
	if err != nil {
		return h.uploadFailed(c, err, resp)
	}
	status := http.StatusCreated
	if len(added) == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, resp)
}

func (h *FilesHandlerImpl) uploadFailed(c echo.Context, err error, resp uploadResponse) error {
	const funcName = "FilesHandlerImpl.uploadFailed"

	var apiErr *APIError
	if errors.Is(err, errs.ErrFileTooLarge) {
		apiErr = FromError(err)
	} else {
		apiErr = NewInternalError("failed to store file", err)
		if !isDevelopment() {
			apiErr.Details = ""
		}
	}
	logger.Error("upload batch interrupted",
		zap.String("function", funcName),
		zap.Int("added", len(resp.Added)),
		zap.Int("queued", len(resp.Files)),
		zap.Error(err),
	)
	return c.JSON(apiErr.Status, partialUploadError{APIError: apiErr, uploadResponse: resp})
}

// HandleDeleteFile removes one file from the queue
func (h *FilesHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}
	if err := h.queue.Remove(id); err != nil {
		if errors.Is(err, errs.ErrFileNotFound) {
			return NewNotFoundError("file", id)
		}
		return NewInternalError("failed to remove file", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleClearFiles empties the queue
func (h *FilesHandlerImpl) HandleClearFiles(c echo.Context) error {
	h.queue.Clear()
	return c.NoContent(http.StatusNoContent)
}

func nonNilFiles(files []models.UploadedFile) []models.UploadedFile {
	if files == nil {
		return []models.UploadedFile{}
	}
	return files
}
