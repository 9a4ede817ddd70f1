// handlers_generate.go - Generation handlers
package api

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/orchestrator"
	"github.com/learnable-ai/companion/internal/settings"
	"github.com/learnable-ai/companion/internal/upload"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// QuestionCounts are the quiz sizes a client may ask for.
var QuestionCounts = []int{3, 5, 7, 10}

// GenerateHandlerImpl implements the GenerateHandler interface
type GenerateHandlerImpl struct {
	proc     Processor
	queue    *upload.Queue
	settings *settings.Store
	baseCtx  context.Context
	wg       sync.WaitGroup
}

// NewGenerateHandler creates a new generate handler. Background generations
// run under baseCtx, not the request context.
func NewGenerateHandler(baseCtx context.Context, proc Processor, queue *upload.Queue, store *settings.Store) GenerateHandler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &GenerateHandlerImpl{
		proc:     proc,
		queue:    queue,
		settings: store,
		baseCtx:  baseCtx,
	}
}

type generateRequest struct {
	Text         string   `json:"text"`
	URL          string   `json:"url"`
	NumQuestions int      `json:"numQuestions"`
	Kinds        []string `json:"kinds,omitempty"`
}

func (r *generateRequest) validate(kinds []models.ArtifactKind) error {
	for _, k := range kinds {
		if k == models.ArtifactQuiz && r.NumQuestions != 0 && !validQuestionCount(r.NumQuestions) {
			return &APIError{
				Status:  http.StatusBadRequest,
				Code:    "VALIDATION_ERROR",
				Message: "numQuestions must be one of 3, 5, 7 or 10",
			}
		}
	}
	return nil
}

func (r *generateRequest) toRequest() orchestrator.Request {
	return orchestrator.Request{
		Text:         r.Text,
		URL:          strings.TrimSpace(r.URL),
		NumQuestions: r.NumQuestions,
	}
}

func validQuestionCount(n int) bool {
	for _, v := range QuestionCounts {
		if v == n {
			return true
		}
	}
	return false
}

// HandleGenerate starts one artifact generation. Requests that cannot reach
// the backend fail inline; everything else is accepted and runs in the
// background while clients follow the status.
func (h *GenerateHandlerImpl) HandleGenerate(c echo.Context) error {
	kind, ok := models.ParseArtifactKind(c.Param("kind"))
	if !ok {
		return NewValidationError("kind")
	}

	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate([]models.ArtifactKind{kind}); err != nil {
		return err
	}

	if h.baseCtx.Err() != nil {
		return NewServiceUnavailableError("the server is shutting down")
	}

	r := req.toRequest()
	if h.failsFast(r) {
		if err := h.proc.Generate(c.Request().Context(), kind, r); err != nil {
			return FromError(err)
		}
		return c.JSON(http.StatusOK, h.proc.Status())
	}

	h.run("HandleGenerate", func(ctx context.Context) error {
		return h.proc.Generate(ctx, kind, r)
	})
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"accepted": true,
		"kinds":    []models.ArtifactKind{kind},
	})
}

// HandleGenerateAll starts several generations at once
func (h *GenerateHandlerImpl) HandleGenerateAll(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	kinds := make([]models.ArtifactKind, 0, len(req.Kinds))
	for _, s := range req.Kinds {
		k, ok := models.ParseArtifactKind(s)
		if !ok {
			return NewValidationError("kinds")
		}
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		kinds = models.AllArtifacts
	}
	if err := req.validate(kinds); err != nil {
		return err
	}

	if h.baseCtx.Err() != nil {
		return NewServiceUnavailableError("the server is shutting down")
	}

	r := req.toRequest()
	if h.failsFast(r) {
		if err := h.proc.GenerateAll(c.Request().Context(), r, kinds...); err != nil {
			return FromError(err)
		}
		return c.JSON(http.StatusOK, h.proc.Status())
	}

	h.run("HandleGenerateAll", func(ctx context.Context) error {
		return h.proc.GenerateAll(ctx, r, kinds...)
	})
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"accepted": true,
		"kinds":    kinds,
	})
}

// failsFast reports whether the processor will reject r without any I/O.
func (h *GenerateHandlerImpl) failsFast(r orchestrator.Request) bool {
	if h.settings != nil && !h.settings.HasAPIKey() {
		return true
	}
	if strings.TrimSpace(r.Text) != "" || r.URL != "" {
		return false
	}
	return h.queue == nil || h.queue.Len() == 0
}

func (h *GenerateHandlerImpl) run(funcName string, fn func(ctx context.Context) error) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := fn(h.baseCtx); err != nil {
			logger.Warn("background generation failed",
				zap.String("function", funcName),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until background generations have returned
func (h *GenerateHandlerImpl) Wait() {
	h.wg.Wait()
}

// HandleStatus returns the processing status
func (h *GenerateHandlerImpl) HandleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.proc.Status())
}

// HandleResults returns every generated artifact
func (h *GenerateHandlerImpl) HandleResults(c echo.Context) error {
	return c.JSON(http.StatusOK, h.proc.Results())
}

// HandleResultsMsgpack exports the results as MessagePack
func (h *GenerateHandlerImpl) HandleResultsMsgpack(c echo.Context) error {
	data, err := msgpack.Marshal(h.proc.Results())
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="results.msgpack"`)
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleReset clears results and returns to idle
func (h *GenerateHandlerImpl) HandleReset(c echo.Context) error {
	h.proc.Reset()
	return c.JSON(http.StatusOK, h.proc.Status())
}

// HandleCancel returns to idle without clearing results
func (h *GenerateHandlerImpl) HandleCancel(c echo.Context) error {
	h.proc.Cancel()
	return c.JSON(http.StatusOK, h.proc.Status())
}
