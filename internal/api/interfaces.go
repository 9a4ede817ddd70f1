// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/orchestrator"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// FilesHandler manages the upload queue
type FilesHandler interface {
	HandleListFiles(c echo.Context) error
	HandleUploadFiles(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleClearFiles(c echo.Context) error
}

// GenerateHandler starts generations and exposes their state
type GenerateHandler interface {
	HandleGenerate(c echo.Context) error
	HandleGenerateAll(c echo.Context) error
	HandleStatus(c echo.Context) error
	HandleResults(c echo.Context) error
	HandleResultsMsgpack(c echo.Context) error
	HandleReset(c echo.Context) error
	HandleCancel(c echo.Context) error
	// Wait blocks until background generations have returned.
	Wait()
}

// StudyHandler serves the quiz, flashcard and mind-map views
type StudyHandler interface {
	HandleGetQuiz(c echo.Context) error
	HandleQuizAnswer(c echo.Context) error
	HandleQuizNext(c echo.Context) error
	HandleQuizPrevious(c echo.Context) error
	HandleQuizFinish(c echo.Context) error
	HandleQuizRestart(c echo.Context) error
	HandleGetFlashcards(c echo.Context) error
	HandleFlipFlashcard(c echo.Context) error
	HandleMoreFlashcards(c echo.Context) error
	HandleGetMindmap(c echo.Context) error
}

// SettingsHandler manages the credential and local session
type SettingsHandler interface {
	HandleGetAPIKey(c echo.Context) error
	HandleSetAPIKey(c echo.Context) error
	HandleDeleteAPIKey(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleLogin(c echo.Context) error
	HandleLogout(c echo.Context) error
}

// Processor is the orchestrator surface used by the handlers.
// This allows swapping the orchestrator in tests.
type Processor interface {
	Generate(ctx context.Context, kind models.ArtifactKind, req orchestrator.Request) error
	GenerateAll(ctx context.Context, req orchestrator.Request, kinds ...models.ArtifactKind) error
	Status() models.ProcessingStatus
	Results() models.ProcessingResults
	Reset()
	Cancel()
	OnStatus(fn func(models.ProcessingStatus))
	OnResults(fn func(models.ProcessingResults))
}

// BackendProber checks that the generation backend is reachable
type BackendProber interface {
	Hello(ctx context.Context) (string, error)
	BaseURL() string
}
