// Package quiz holds the state of one quiz attempt.
package quiz

import (
	"sync"

	"github.com/learnable-ai/companion/internal/models"
)

// Phase is the coarse state of a Session.
type Phase string

const (
	PhaseAnswering   Phase = "answering"
	PhaseAllAnswered Phase = "all-answered"
	PhaseFinished    Phase = "finished"
)

// Session tracks answers for a fixed list of questions. It is safe for
// concurrent use.
type Session struct {
	mu          sync.RWMutex
	questions   []models.MCQQuestion
	current     int
	answers     []*string
	showResults bool
	score       int
}

// NewSession starts a quiz at the first question with no answers.
func NewSession(questions []models.MCQQuestion) *Session {
	qs := make([]models.MCQQuestion, len(questions))
	copy(qs, questions)
	return &Session{
		questions: qs,
		answers:   make([]*string, len(qs)),
	}
}

// Len returns the number of questions.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}

// Select records option as the answer to the current question. It does not
// advance. Answers are frozen once results are shown.
func (s *Session) Select(option string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.showResults || len(s.questions) == 0 {
		return false
	}
	opt := option
	s.answers[s.current] = &opt
	return true
}

// Next moves forward one question. It reports false on the last question.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.questions)-1 {
		return false
	}
	s.current++
	return true
}

// Previous moves back one question. It reports false on the first question.
func (s *Session) Previous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == 0 {
		return false
	}
	s.current--
	return true
}

// Current returns the current index.
func (s *Session) Current() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// CanFinish reports whether every question has an answer.
func (s *Session) CanFinish() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allAnsweredLocked()
}

// Finish scores the attempt and shows results. It returns the score, or
// false if some question is unanswered.
func (s *Session) Finish() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.allAnsweredLocked() {
		return 0, false
	}
	score := 0
	for i, q := range s.questions {
		if *s.answers[i] == q.CorrectAnswer {
			score++
		}
	}
	s.score = score
	s.showResults = true
	return score, true
}

// Restart clears all answers and returns to the first question.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = 0
	s.answers = make([]*string, len(s.questions))
	s.showResults = false
	s.score = 0
}

// Phase derives the session phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.showResults:
		return PhaseFinished
	case s.allAnsweredLocked():
		return PhaseAllAnswered
	default:
		return PhaseAnswering
	}
}

func (s *Session) allAnsweredLocked() bool {
	if len(s.questions) == 0 {
		return false
	}
	for _, a := range s.answers {
		if a == nil {
			return false
		}
	}
	return true
}

// QuestionView is one question as shown to the user. Correct answers and
// explanations are only filled in once results are shown.
type QuestionView struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	Answer        *string  `json:"answer"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	Correct       *bool    `json:"correct,omitempty"`
}

// Snapshot is the JSON view of a Session.
type Snapshot struct {
	Phase       Phase          `json:"phase"`
	Current     int            `json:"current"`
	Total       int            `json:"total"`
	Answered    int            `json:"answered"`
	CanFinish   bool           `json:"canFinish"`
	ShowResults bool           `json:"showResults"`
	Score       int            `json:"score"`
	Questions   []QuestionView `json:"questions"`
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Current:     s.current,
		Total:       len(s.questions),
		CanFinish:   s.allAnsweredLocked(),
		ShowResults: s.showResults,
		Score:       s.score,
		Questions:   make([]QuestionView, len(s.questions)),
	}
	switch {
	case s.showResults:
		snap.Phase = PhaseFinished
	case snap.CanFinish:
		snap.Phase = PhaseAllAnswered
	default:
		snap.Phase = PhaseAnswering
	}

	for i, q := range s.questions {
		v := QuestionView{
			Question: q.Question,
			Options:  append([]string(nil), q.Options...),
		}
		if a := s.answers[i]; a != nil {
			ans := *a
			v.Answer = &ans
			snap.Answered++
		}
		if s.showResults {
			v.CorrectAnswer = q.CorrectAnswer
			v.Explanation = q.Explanation
			ok := v.Answer != nil && *v.Answer == q.CorrectAnswer
			v.Correct = &ok
		}
		snap.Questions[i] = v
	}
	return snap
}
