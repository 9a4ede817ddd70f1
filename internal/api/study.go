package api

import (
	"sync"

	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/flashcards"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/quiz"
)

// Study holds the quiz attempt and flashcard deck built from the latest
// results. A new quiz or deck replaces the old one; merges into other slots
// leave them alone.
type Study struct {
	mu       sync.RWMutex
	quizSrc  *models.QuizResult
	session  *quiz.Session
	cardsSrc *models.FlashcardsResult
	viewer   *flashcards.Viewer
}

// NewStudy creates an empty Study.
func NewStudy() *Study {
	return &Study{}
}

// OnResults is registered as a results observer.
func (s *Study) OnResults(res models.ProcessingResults) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.Quiz != s.quizSrc {
		s.quizSrc = res.Quiz
		s.session = nil
		if res.Quiz != nil {
			s.session = quiz.NewSession(res.Quiz.Quiz)
		}
	}
	if res.Flashcards != s.cardsSrc {
		s.cardsSrc = res.Flashcards
		s.viewer = nil
		if res.Flashcards != nil {
			s.viewer = flashcards.NewViewer(res.Flashcards.Flashcards)
		}
	}
}

// Quiz returns the current quiz attempt.
func (s *Study) Quiz() (*quiz.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, errs.ErrNoQuiz
	}
	return s.session, nil
}

// Flashcards returns the current deck viewer.
func (s *Study) Flashcards() (*flashcards.Viewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.viewer == nil {
		return nil, errs.ErrNoFlashcards
	}
	return s.viewer, nil
}
