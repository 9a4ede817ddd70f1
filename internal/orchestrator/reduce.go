package orchestrator

import "github.com/learnable-ai/companion/internal/models"

// Event is an artifact completion. Exactly one of the Completed types.
type Event interface {
	Kind() models.ArtifactKind
}

type SummaryCompleted struct{ Result *models.SummaryResult }

type MindmapCompleted struct{ Result *models.MindmapResult }

type QuizCompleted struct{ Result *models.QuizResult }

type FlashcardsCompleted struct{ Result *models.FlashcardsResult }

func (SummaryCompleted) Kind() models.ArtifactKind    { return models.ArtifactSummary }
func (MindmapCompleted) Kind() models.ArtifactKind    { return models.ArtifactMindmap }
func (QuizCompleted) Kind() models.ArtifactKind       { return models.ArtifactQuiz }
func (FlashcardsCompleted) Kind() models.ArtifactKind { return models.ArtifactFlashcards }

// Reduce returns prev with the event's slot replaced. No other slot changes.
// ContentType follows the latest completion that reported one.
func Reduce(prev models.ProcessingResults, ev Event) models.ProcessingResults {
	next := prev
	var contentType string
	switch e := ev.(type) {
	case SummaryCompleted:
		next.Summary = e.Result
		if e.Result != nil {
			contentType = e.Result.ContentType
		}
	case MindmapCompleted:
		next.Mindmap = e.Result
		if e.Result != nil {
			contentType = e.Result.ContentType
		}
	case QuizCompleted:
		next.Quiz = e.Result
		if e.Result != nil {
			contentType = e.Result.ContentType
		}
	case FlashcardsCompleted:
		next.Flashcards = e.Result
		if e.Result != nil {
			contentType = e.Result.ContentType
		}
	}
	if contentType != "" {
		next.ContentType = contentType
	}
	return next
}
