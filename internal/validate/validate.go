// Package validate checks user-selected files before they are queued for upload.
package validate

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/models"
)

// DefaultMaxFileSize is the per-file upload limit (50 MB).
const DefaultMaxFileSize int64 = 50 * 1024 * 1024

var allowedExtensions = map[string]models.MediaCategory{
	".pdf":  models.CategoryDocument,
	".docx": models.CategoryDocument,
	".doc":  models.CategoryDocument,

	".mp3":  models.CategoryAudio,
	".wav":  models.CategoryAudio,
	".m4a":  models.CategoryAudio,
	".flac": models.CategoryAudio,
	".aac":  models.CategoryAudio,
	".ogg":  models.CategoryAudio,

	".mp4":  models.CategoryVideo,
	".avi":  models.CategoryVideo,
	".mov":  models.CategoryVideo,
	".mkv":  models.CategoryVideo,
	".wmv":  models.CategoryVideo,
	".flv":  models.CategoryVideo,
	".webm": models.CategoryVideo,
	".m4v":  models.CategoryVideo,
}

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
}

// Result is the outcome of a file check.
type Result struct {
	Valid     bool                 `json:"valid"`
	Reason    string               `json:"reason,omitempty"`
	Extension string               `json:"extension"`
	Category  models.MediaCategory `json:"category,omitempty"`
	err       error
}

// Err returns the sentinel error behind an invalid result, or nil.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return r.err
}

// Validator checks extension and size against fixed limits.
type Validator struct {
	maxSize int64
}

// New creates a Validator. A non-positive maxSize selects DefaultMaxFileSize.
func New(maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the configured size limit in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// Validate checks name and size. It never panics and has no side effects.
func (v *Validator) Validate(name string, size int64) Result {
	ext := strings.ToLower(filepath.Ext(name))
	res := Result{Extension: ext}

	category, ok := allowedExtensions[ext]
	if !ok {
		res.err = errs.ErrUnsupportedType
		shown := ext
		if shown == "" {
			shown = "(none)"
		}
		res.Reason = fmt.Sprintf("unsupported file type %s. Allowed: %s", shown, strings.Join(AllowedExtensions(), ", "))
		return res
	}
	res.Category = category

	if size > v.maxSize {
		res.err = errs.ErrFileTooLarge
		res.Reason = fmt.Sprintf("file size %s exceeds the %s limit", formatSize(size), formatSize(v.maxSize))
		return res
	}
	res.Valid = true
	return res
}

// ValidateFile checks a file against the default 50 MB limit.
func ValidateFile(name string, size int64) Result {
	return New(DefaultMaxFileSize).Validate(name, size)
}

// CategoryOf returns the media category for an extension such as ".mp3".
func CategoryOf(ext string) (models.MediaCategory, bool) {
	c, ok := allowedExtensions[strings.ToLower(ext)]
	return c, ok
}

// MimeTypeOf returns the MIME type for an accepted extension.
func MimeTypeOf(ext string) string {
	if m, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}

// AllowedExtensions returns the allow-list, sorted.
func AllowedExtensions() []string {
	out := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func formatSize(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%.1f MB", float64(n)/mb)
}
