package models

// FileStatus represents the transfer status of a queued file.
type FileStatus string

const (
	FileStatusPending   FileStatus = "pending"
	FileStatusUploading FileStatus = "uploading"
	FileStatusSuccess   FileStatus = "success"
	FileStatusError     FileStatus = "error"
)

// MediaCategory groups accepted file extensions.
type MediaCategory string

const (
	CategoryAudio    MediaCategory = "audio"
	CategoryVideo    MediaCategory = "video"
	CategoryDocument MediaCategory = "document"
)

// UploadedFile represents a validated file waiting in the upload queue.
type UploadedFile struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Size      int64         `json:"size"`
	MimeType  string        `json:"mimeType"`
	Extension string        `json:"extension"`
	Category  MediaCategory `json:"category"`
	Progress  int           `json:"progress"` // 0-100
	Status    FileStatus    `json:"status"`
	Error     string        `json:"error,omitempty"`
	Path      string        `json:"-"` // location of the bytes in the file store
}
