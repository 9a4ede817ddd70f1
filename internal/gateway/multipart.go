package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
	"sync"
)

// Multipart field names understood by the backend.
const (
	FieldData     = "data"
	FieldAudio    = "audio_file"
	FieldVideo    = "video_file"
	FieldDocument = "document_file"
)

// FilePart is one media file attached to a multimedia request.
type FilePart struct {
	Name     string
	MimeType string
	Reader   io.Reader
}

// MultimediaInput is the body of a multimedia request. Params are sent as a
// single JSON document under the "data" field.
type MultimediaInput struct {
	Params     map[string]any
	YouTubeURL string
	Audio      *FilePart
	Video      *FilePart
	Document   *FilePart
}

func (in MultimediaInput) empty() bool {
	if in.Audio != nil || in.Video != nil || in.Document != nil {
		return false
	}
	if strings.TrimSpace(in.YouTubeURL) != "" {
		return false
	}
	for _, v := range in.Params {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// encode renders the multipart body. It returns the body and the content type
// carrying the writer's boundary.
func (in MultimediaInput) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	data := make(map[string]any, len(in.Params)+1)
	for k, v := range in.Params {
		data[k] = v
	}
	if u := strings.TrimSpace(in.YouTubeURL); u != "" {
		data["youtube_url"] = u
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, "", fmt.Errorf("encode data field: %w", err)
	}
	if err := w.WriteField(FieldData, string(encoded)); err != nil {
		return nil, "", err
	}

	parts := []struct {
		field string
		part  *FilePart
	}{
		{FieldAudio, in.Audio},
		{FieldVideo, in.Video},
		{FieldDocument, in.Document},
	}
	for _, p := range parts {
		if p.part == nil {
			continue
		}
		if err := writeFile(w, p.field, p.part); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// TranscribableExtensions lists the audio types the transcriber accepts.
var TranscribableExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".aac"}

// IsTranscribable reports whether name has an accepted audio extension.
func IsTranscribable(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range TranscribableExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// encodeAudio renders a body holding only the audio_file part.
func encodeAudio(f *FilePart) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := writeFile(w, FieldAudio, f); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, field string, f *FilePart) error {
	if f.Reader == nil {
		return fmt.Errorf("%s: no file content", field)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	mime := f.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	h.Set("Content-Type", mime)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f.Reader); err != nil {
		return fmt.Errorf("%s: copy %s: %w", field, f.Name, err)
	}
	return nil
}

// ProgressFunc receives upload progress as a percentage, 0-100.
type ProgressFunc func(percent int)

// progressReader reports how much of the request body the transport has read.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	mu       sync.Mutex
	callback ProgressFunc
}

func newProgressReader(buf *bytes.Buffer, fn ProgressFunc) *progressReader {
	return &progressReader{
		r:        buf,
		total:    int64(buf.Len()),
		last:     -1,
		callback: fn,
	}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.read += int64(n)
		pct := 100
		if p.total > 0 {
			pct = int(p.read * 100 / p.total)
		}
		p.report(pct)
		p.mu.Unlock()
	}
	return n, err
}

func (p *progressReader) finish() {
	p.mu.Lock()
	p.report(100)
	p.mu.Unlock()
}

func (p *progressReader) report(pct int) {
	if p.callback == nil || pct <= p.last {
		return
	}
	if pct > 100 {
		pct = 100
	}
	p.last = pct
	p.callback(pct)
}
