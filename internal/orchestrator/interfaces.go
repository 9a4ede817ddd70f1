package orchestrator

import (
	"context"

	"github.com/learnable-ai/companion/internal/gateway"
	"github.com/learnable-ai/companion/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock.go

// Gateway is the subset of *gateway.Client the processor calls.
type Gateway interface {
	Summarize(ctx context.Context, text string) (*models.SummaryResult, error)
	SummarizeMultimedia(ctx context.Context, in gateway.MultimediaInput, progress gateway.ProgressFunc) (*models.SummaryResult, error)
	GenerateMindmap(ctx context.Context, topic string) (*models.MindmapResult, error)
	GenerateMindmapMultimedia(ctx context.Context, in gateway.MultimediaInput, progress gateway.ProgressFunc) (*models.MindmapResult, error)
	GenerateQuiz(ctx context.Context, content string, n int) (*models.QuizResult, error)
	GenerateQuizMultimedia(ctx context.Context, in gateway.MultimediaInput, progress gateway.ProgressFunc) (*models.QuizResult, error)
	GenerateFlashcards(ctx context.Context, content string) (*models.FlashcardsResult, error)
	GenerateFlashcardsMultimedia(ctx context.Context, in gateway.MultimediaInput, progress gateway.ProgressFunc) (*models.FlashcardsResult, error)
}

// TextExtractor turns a web page URL into article text.
type TextExtractor interface {
	Text(ctx context.Context, url string) (string, error)
}
