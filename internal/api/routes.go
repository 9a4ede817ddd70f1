// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/learnable-ai/companion/internal/logger"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/settings"
	"github.com/learnable-ai/companion/internal/upload"
	"go.uber.org/zap"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Queue     *upload.Queue
	Processor Processor
	Settings  *settings.Store
	Backend   BackendProber
	Version   string
	// BaseContext bounds background generations; cancel it on shutdown.
	BaseContext    context.Context
	WSMaxMessageKB int
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Files    FilesHandler
	Generate GenerateHandler
	Study    StudyHandler
	Settings SettingsHandler
	Hub      *Hub
}

// NewHandlers creates all handler instances and subscribes the websocket hub
// and study state to the stores they mirror.
func NewHandlers(deps *Dependencies) *Handlers {
	study := NewStudy()
	hub := NewHub(deps.WSMaxMessageKB)

	deps.Processor.OnResults(study.OnResults)
	deps.Processor.OnStatus(func(st models.ProcessingStatus) {
		hub.Broadcast(MsgTypeStatus, st)
	})
	deps.Processor.OnResults(func(res models.ProcessingResults) {
		hub.Broadcast(MsgTypeResults, res)
	})
	deps.Queue.OnChange(func(files []models.UploadedFile) {
		hub.Broadcast(MsgTypeFiles, files)
	})
	deps.Settings.Subscribe(func(ev settings.Event) {
		hub.Broadcast(MsgTypeSettings, ev)
	})

	hub.SetSnapshot(func() []WSMessage {
		var out []WSMessage
		add := func(t string, v interface{}) {
			if m, err := NewMessage(t, v); err == nil {
				out = append(out, m)
			}
		}
		add(MsgTypeStatus, deps.Processor.Status())
		add(MsgTypeResults, deps.Processor.Results())
		add(MsgTypeFiles, deps.Queue.List())
		add(MsgTypeSettings, settings.Event{HasAPIKey: deps.Settings.HasAPIKey()})
		return out
	})

	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.Backend),
		Files:    NewFilesHandler(deps.Queue),
		Generate: NewGenerateHandler(deps.BaseContext, deps.Processor, deps.Queue, deps.Settings),
		Study:    NewStudyHandler(study, deps.Processor),
		Settings: NewSettingsHandler(deps.Settings),
		Hub:      hub,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.GET("/ws", handlers.Hub.HandleWebSocket)

	// Upload queue
	apiGroup.GET("/files", handlers.Files.HandleListFiles)
	apiGroup.POST("/files", handlers.Files.HandleUploadFiles)
	apiGroup.DELETE("/files", handlers.Files.HandleClearFiles)
	apiGroup.DELETE("/files/:id", handlers.Files.HandleDeleteFile)

	// Generation
	apiGroup.POST("/generate", handlers.Generate.HandleGenerateAll)
	apiGroup.POST("/generate/:kind", handlers.Generate.HandleGenerate)
	apiGroup.GET("/status", handlers.Generate.HandleStatus)
	apiGroup.GET("/results", handlers.Generate.HandleResults)
	apiGroup.GET("/results/msgpack", handlers.Generate.HandleResultsMsgpack)
	apiGroup.POST("/reset", handlers.Generate.HandleReset)
	apiGroup.POST("/cancel", handlers.Generate.HandleCancel)

	// Quiz
	quizGroup := apiGroup.Group("/quiz")
	quizGroup.GET("", handlers.Study.HandleGetQuiz)
	quizGroup.POST("/answer", handlers.Study.HandleQuizAnswer)
	quizGroup.POST("/next", handlers.Study.HandleQuizNext)
	quizGroup.POST("/previous", handlers.Study.HandleQuizPrevious)
	quizGroup.POST("/finish", handlers.Study.HandleQuizFinish)
	quizGroup.POST("/restart", handlers.Study.HandleQuizRestart)

	// Flashcards
	cardsGroup := apiGroup.Group("/flashcards")
	cardsGroup.GET("", handlers.Study.HandleGetFlashcards)
	cardsGroup.POST("/more", handlers.Study.HandleMoreFlashcards)
	cardsGroup.POST("/:index/flip", handlers.Study.HandleFlipFlashcard)

	apiGroup.GET("/mindmap", handlers.Study.HandleGetMindmap)

	// Settings and local session
	apiGroup.GET("/settings/apikey", handlers.Settings.HandleGetAPIKey)
	apiGroup.PUT("/settings/apikey", handlers.Settings.HandleSetAPIKey)
	apiGroup.DELETE("/settings/apikey", handlers.Settings.HandleDeleteAPIKey)
	apiGroup.GET("/session", handlers.Settings.HandleGetSession)
	apiGroup.POST("/session/login", handlers.Settings.HandleLogin)
	apiGroup.POST("/session/logout", handlers.Settings.HandleLogout)
}

// MiddlewareConfig selects the optional middleware
type MiddlewareConfig struct {
	RequestLogging bool
	BodyLimit      string
	CORS           bool
	AllowOrigins   []string
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.RequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/status" ||
				path == "/api/health" ||
				path == "/api/ws" ||
				!strings.HasPrefix(path, "/api")
		},
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 * 1024,
	}))

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	if cfg.CORS {
		origins := cfg.AllowOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
