// Package gateway is the HTTP client for the content generation backend.
//
// Every artifact has a JSON variant that takes plain text and a multipart
// variant that takes media files. Failures of any kind are reported as *Error.
// Nothing is retried.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single request, upload included.
const DefaultTimeout = 5 * time.Minute

// APIKeyHeader carries the user's credential on every request.
const APIKeyHeader = "X-API-Key"

const (
	pathHello                = "/learning/hello"
	pathSummarize            = "/learning/summarize-content"
	pathMindmap              = "/learning/generate-mindmap"
	pathMindmapMultimedia    = "/learning/generate-mindmap-multimedia"
	pathQuiz                 = "/learning/generate-mcq-quiz"
	pathQuizMultimedia       = "/learning/generate-mcq-quiz-multimedia"
	pathFlashcards           = "/learning/generate-flashcards"
	pathFlashcardsMultimedia = "/learning/generate-flashcards-multimedia"
	pathTranscribeAudio      = "/content/transcribe-audio"
)

var tracer = otel.Tracer("github.com/learnable-ai/companion/internal/gateway")

// CredentialSource supplies the API key at call time.
type CredentialSource interface {
	APIKey() string
}

// StaticKey is a CredentialSource with a fixed key.
type StaticKey string

func (k StaticKey) APIKey() string { return string(k) }

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Credentials CredentialSource
}

// Client talks to the generation backend.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	creds   CredentialSource
}

// New creates a Client. BaseURL is required.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("gateway: base URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	// The timeout is enforced by the transport for the whole exchange.
	clone := *hc
	clone.Timeout = timeout

	return &Client{
		baseURL: base,
		timeout: timeout,
		http:    &clone,
		creds:   opts.Credentials,
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Hello probes the backend.
func (c *Client) Hello(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathHello, nil)
	if err != nil {
		return "", newInvalidInputError("hello", err.Error())
	}
	if err := c.do(ctx, "hello", req, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Summarize sends plain text to the summarizer.
func (c *Client) Summarize(ctx context.Context, text string) (*models.SummaryResult, error) {
	const op = "summarize"
	if strings.TrimSpace(text) == "" {
		return nil, newInvalidInputError(op, "text is required")
	}
	var out models.SummaryResult
	if err := c.postJSON(ctx, op, pathSummarize, map[string]any{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SummarizeMultimedia sends media files (and optional text) to the summarizer.
func (c *Client) SummarizeMultimedia(ctx context.Context, in MultimediaInput, progress ProgressFunc) (*models.SummaryResult, error) {
	var out models.SummaryResult
	if err := c.postMultipart(ctx, "summarize", pathSummarize, in, progress, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateMindmap builds a mind map for a topic or passage.
func (c *Client) GenerateMindmap(ctx context.Context, topic string) (*models.MindmapResult, error) {
	const op = "mindmap"
	if strings.TrimSpace(topic) == "" {
		return nil, newInvalidInputError(op, "topic is required")
	}
	var out models.MindmapResult
	if err := c.postJSON(ctx, op, pathMindmap, map[string]any{"topic": topic}, &out); err != nil {
		return nil, err
	}
	if out.Topic == "" {
		out.Topic = topic
	}
	return &out, nil
}

// GenerateMindmapMultimedia builds a mind map from media files.
func (c *Client) GenerateMindmapMultimedia(ctx context.Context, in MultimediaInput, progress ProgressFunc) (*models.MindmapResult, error) {
	var out models.MindmapResult
	if err := c.postMultipart(ctx, "mindmap", pathMindmapMultimedia, in, progress, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateQuiz asks for n multiple choice questions about content.
func (c *Client) GenerateQuiz(ctx context.Context, content string, n int) (*models.QuizResult, error) {
	const op = "quiz"
	if strings.TrimSpace(content) == "" {
		return nil, newInvalidInputError(op, "content is required")
	}
	var out models.QuizResult
	body := map[string]any{"content": content, "num_questions": n}
	if err := c.postJSON(ctx, op, pathQuiz, body, &out); err != nil {
		return nil, err
	}
	normalizeQuiz(&out)
	return &out, nil
}

// GenerateQuizMultimedia asks for a quiz about media files.
func (c *Client) GenerateQuizMultimedia(ctx context.Context, in MultimediaInput, progress ProgressFunc) (*models.QuizResult, error) {
	var out models.QuizResult
	if err := c.postMultipart(ctx, "quiz", pathQuizMultimedia, in, progress, &out); err != nil {
		return nil, err
	}
	normalizeQuiz(&out)
	return &out, nil
}

// GenerateFlashcards asks for study cards about content.
func (c *Client) GenerateFlashcards(ctx context.Context, content string) (*models.FlashcardsResult, error) {
	const op = "flashcards"
	if strings.TrimSpace(content) == "" {
		return nil, newInvalidInputError(op, "content is required")
	}
	var out models.FlashcardsResult
	if err := c.postJSON(ctx, op, pathFlashcards, map[string]any{"content": content}, &out); err != nil {
		return nil, err
	}
	normalizeFlashcards(&out)
	return &out, nil
}

// GenerateFlashcardsMultimedia asks for study cards about media files.
func (c *Client) GenerateFlashcardsMultimedia(ctx context.Context, in MultimediaInput, progress ProgressFunc) (*models.FlashcardsResult, error) {
	var out models.FlashcardsResult
	if err := c.postMultipart(ctx, "flashcards", pathFlashcardsMultimedia, in, progress, &out); err != nil {
		return nil, err
	}
	normalizeFlashcards(&out)
	return &out, nil
}

// TranscribeAudio uploads a single audio file and returns its transcript.
func (c *Client) TranscribeAudio(ctx context.Context, audio *FilePart, progress ProgressFunc) (*models.TranscriptionResult, error) {
	const op = "transcribe"
	if audio == nil || audio.Reader == nil {
		return nil, newInvalidInputError(op, "an audio file is required")
	}
	if !IsTranscribable(audio.Name) {
		return nil, newInvalidInputError(op, "unsupported audio type, allowed: "+strings.Join(TranscribableExtensions, ", "))
	}
	if _, err := c.requireKey(op); err != nil {
		return nil, err
	}

	body, contentType, err := encodeAudio(audio)
	if err != nil {
		return nil, newInvalidInputError(op, err.Error())
	}
	var out models.TranscriptionResult
	if err := c.sendMultipart(ctx, op, pathTranscribeAudio, body, contentType, progress, &out); err != nil {
		return nil, err
	}
	if out.FileName == "" {
		out.FileName = audio.Name
	}
	return &out, nil
}

func (c *Client) requireKey(op string) (string, error) {
	if c.creds == nil {
		return "", newPreconditionError(op, errs.ErrMissingAPIKey)
	}
	key := strings.TrimSpace(c.creds.APIKey())
	if key == "" {
		return "", newPreconditionError(op, errs.ErrMissingAPIKey)
	}
	return key, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return newInvalidInputError(op, err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return newInvalidInputError(op, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, op, req, nil, out)
}

func (c *Client) postMultipart(ctx context.Context, op, path string, in MultimediaInput, progress ProgressFunc, out any) error {
	if in.empty() {
		return newInvalidInputError(op, "at least one file, a YouTube URL or text is required")
	}
	// Checked before the body is assembled so a missing key costs no I/O.
	if _, err := c.requireKey(op); err != nil {
		return err
	}

	body, contentType, err := in.encode()
	if err != nil {
		return newInvalidInputError(op, err.Error())
	}
	return c.sendMultipart(ctx, op, path, body, contentType, progress, out)
}

func (c *Client) sendMultipart(ctx context.Context, op, path string, body *bytes.Buffer, contentType string, progress ProgressFunc, out any) error {
	tracked := newProgressReader(body, progress)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, tracked)
	if err != nil {
		return newInvalidInputError(op, err.Error())
	}
	req.ContentLength = int64(body.Len())
	// The boundary comes from the multipart writer, never a fixed header value.
	req.Header.Set("Content-Type", contentType)

	if err := c.do(ctx, op, req, tracked, out); err != nil {
		return err
	}
	tracked.finish()
	return nil
}

func (c *Client) do(ctx context.Context, op string, req *http.Request, tracked *progressReader, out any) (err error) {
	const funcName = "Client.do"

	ctx, span := tracer.Start(ctx, "gateway."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.URL.Path),
	)

	if req.Method != http.MethodGet {
		key, kerr := c.requireKey(op)
		if kerr != nil {
			return kerr
		}
		req.Header.Set(APIKeyHeader, key)
	} else if c.creds != nil {
		if key := strings.TrimSpace(c.creds.APIKey()); key != "" {
			req.Header.Set(APIKeyHeader, key)
		}
	}
	req.Header.Set("Accept", "application/json")
	req = req.WithContext(ctx)

	start := time.Now()
	resp, rerr := c.http.Do(req)
	if rerr != nil {
		gerr := classifyTransport(op, ctx, rerr, c.timeout.String())
		logger.Warn("backend request failed",
			zap.String("function", funcName),
			zap.String("op", op),
			zap.String("kind", string(gerr.Kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(rerr),
		)
		return gerr
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, rerr := io.ReadAll(resp.Body)
	if rerr != nil {
		return classifyTransport(op, ctx, rerr, c.timeout.String())
	}

	logger.Debug("backend responded",
		zap.String("function", funcName),
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusCodeError(op, resp.StatusCode, errorMessage(raw, resp.Status))
	}

	raw = stripCodeFence(raw)

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return newDecodeError(op, err)
	}
	if env.failed() {
		return newBackendError(op, env.message())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(unfenceFields(raw), out); err != nil {
		return newDecodeError(op, err)
	}
	return nil
}

// envelope is the common shape of every backend reply.
type envelope struct {
	Success *bool           `json:"success"`
	Error   string          `json:"error"`
	Detail  json.RawMessage `json:"detail"`
}

func (e envelope) failed() bool {
	return e.Error != "" || (e.Success != nil && !*e.Success)
}

func (e envelope) message() string {
	if e.Error != "" {
		return e.Error
	}
	if len(e.Detail) > 0 {
		var s string
		if json.Unmarshal(e.Detail, &s) == nil {
			return s
		}
		return string(e.Detail)
	}
	return ""
}

func errorMessage(raw []byte, fallback string) string {
	var env envelope
	if json.Unmarshal(raw, &env) == nil {
		if msg := env.message(); msg != "" {
			return msg
		}
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fallback
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
