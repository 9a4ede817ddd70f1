package quiz

import (
	"testing"

	"github.com/learnable-ai/companion/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questions() []models.MCQQuestion {
	return []models.MCQQuestion{
		{Question: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a", Explanation: "first"},
		{Question: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "b"},
		{Question: "Q3", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "c"},
	}
}

func TestSession_Navigation(t *testing.T) {
	s := NewSession(questions())

	assert.False(t, s.Previous())
	assert.Equal(t, 0, s.Current())
	assert.True(t, s.Next())
	assert.True(t, s.Next())
	assert.False(t, s.Next(), "next on last question is a no-op")
	assert.Equal(t, 2, s.Current())
	assert.True(t, s.Previous())
	assert.Equal(t, 1, s.Current())
}

func TestSession_SelectDoesNotAdvance(t *testing.T) {
	s := NewSession(questions())
	require.True(t, s.Select("b"))
	require.True(t, s.Select("a"))
	assert.Equal(t, 0, s.Current())

	snap := s.Snapshot()
	require.NotNil(t, snap.Questions[0].Answer)
	assert.Equal(t, "a", *snap.Questions[0].Answer)
	assert.Equal(t, 1, snap.Answered)
	assert.Equal(t, PhaseAnswering, snap.Phase)
	assert.Empty(t, snap.Questions[0].CorrectAnswer, "answers hidden until finished")
}

func TestSession_Scoring(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		score   int
	}{
		{"allCorrect", []string{"a", "b", "c"}, 3},
		{"noneCorrect", []string{"d", "d", "d"}, 0},
		{"mixed", []string{"a", "c", "c"}, 2},
		{"caseMatters", []string{"A", "b", "c"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(questions())
			for i, a := range tt.answers {
				require.True(t, s.Select(a))
				if i < len(tt.answers)-1 {
					require.True(t, s.Next())
				}
			}
			assert.Equal(t, PhaseAllAnswered, s.Phase())

			score, ok := s.Finish()
			require.True(t, ok)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, PhaseFinished, s.Phase())

			snap := s.Snapshot()
			assert.True(t, snap.ShowResults)
			assert.Equal(t, tt.score, snap.Score)
			correct := 0
			for _, q := range snap.Questions {
				require.NotNil(t, q.Correct)
				if *q.Correct {
					correct++
				}
			}
			assert.Equal(t, tt.score, correct)
		})
	}
}

func TestSession_FinishRequiresAllAnswers(t *testing.T) {
	s := NewSession(questions())
	s.Select("a")
	assert.False(t, s.CanFinish())
	_, ok := s.Finish()
	assert.False(t, ok)
	assert.Equal(t, PhaseAnswering, s.Phase())
}

func TestSession_Restart(t *testing.T) {
	s := NewSession(questions())
	for i := 0; i < 3; i++ {
		s.Select("a")
		s.Next()
	}
	_, ok := s.Finish()
	require.True(t, ok)
	assert.False(t, s.Select("b"), "answers frozen after finish")

	s.Restart()
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Current)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 0, snap.Answered)
	assert.False(t, snap.ShowResults)
	for _, q := range snap.Questions {
		assert.Nil(t, q.Answer)
	}
}

func TestSession_Empty(t *testing.T) {
	s := NewSession(nil)
	assert.False(t, s.Select("a"))
	assert.False(t, s.Next())
	assert.False(t, s.CanFinish())
	assert.Equal(t, 0, s.Snapshot().Total)
}
