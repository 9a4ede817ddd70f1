package models

// ArtifactKind names one generated learning resource and its results slot.
type ArtifactKind string

const (
	ArtifactSummary    ArtifactKind = "summary"
	ArtifactMindmap    ArtifactKind = "mindmap"
	ArtifactQuiz       ArtifactKind = "quiz"
	ArtifactFlashcards ArtifactKind = "flashcards"
)

// AllArtifacts lists every artifact kind in display order.
var AllArtifacts = []ArtifactKind{ArtifactSummary, ArtifactMindmap, ArtifactQuiz, ArtifactFlashcards}

// ParseArtifactKind maps a route or flag value to an ArtifactKind.
func ParseArtifactKind(s string) (ArtifactKind, bool) {
	switch ArtifactKind(s) {
	case ArtifactSummary, ArtifactMindmap, ArtifactQuiz, ArtifactFlashcards:
		return ArtifactKind(s), true
	}
	return "", false
}

// SummaryResult is returned by /learning/summarize-content.
type SummaryResult struct {
	Success           bool   `json:"success" msgpack:"success"`
	OriginalText      string `json:"original_text" msgpack:"original_text"`
	Summary           string `json:"summary" msgpack:"summary"`
	WordCountOriginal int    `json:"word_count_original" msgpack:"word_count_original"`
	WordCountSummary  int    `json:"word_count_summary" msgpack:"word_count_summary"`
	ContentType       string `json:"content_type,omitempty" msgpack:"content_type,omitempty"`
}

// MindmapNode is one node of a mind-map tree. The root is the topic.
type MindmapNode struct {
	Name     string         `json:"name" msgpack:"name"`
	Children []*MindmapNode `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *MindmapNode) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// MindmapResult is returned by /learning/generate-mindmap(-multimedia).
type MindmapResult struct {
	Success     bool         `json:"success" msgpack:"success"`
	Topic       string       `json:"topic" msgpack:"topic"`
	Mindmap     *MindmapNode `json:"mindmap" msgpack:"mindmap"`
	ContentType string       `json:"content_type,omitempty" msgpack:"content_type,omitempty"`
}

// MCQQuestion is a single multiple choice question.
type MCQQuestion struct {
	Question      string   `json:"question" msgpack:"question"`
	Options       []string `json:"options" msgpack:"options"`
	CorrectAnswer string   `json:"correct_answer" msgpack:"correct_answer"`
	Explanation   string   `json:"explanation" msgpack:"explanation"`
}

// QuizResult is returned by /learning/generate-mcq-quiz(-multimedia).
type QuizResult struct {
	Success      bool          `json:"success" msgpack:"success"`
	Content      string        `json:"content" msgpack:"content"`
	NumQuestions int           `json:"num_questions" msgpack:"num_questions"`
	Quiz         []MCQQuestion `json:"quiz" msgpack:"quiz"`
	ContentType  string        `json:"content_type,omitempty" msgpack:"content_type,omitempty"`
}

// Flashcard is one study card.
type Flashcard struct {
	Front      string `json:"front" msgpack:"front"`
	Back       string `json:"back" msgpack:"back"`
	Category   string `json:"category" msgpack:"category"`
	Difficulty string `json:"difficulty" msgpack:"difficulty"`
}

// FlashcardsResult is returned by /learning/generate-flashcards(-multimedia).
type FlashcardsResult struct {
	Success     bool        `json:"success" msgpack:"success"`
	Content     string      `json:"content" msgpack:"content"`
	Flashcards  []Flashcard `json:"flashcards" msgpack:"flashcards"`
	TotalCards  int         `json:"total_cards" msgpack:"total_cards"`
	ContentType string      `json:"content_type,omitempty" msgpack:"content_type,omitempty"`
}

// TranscriptionResult is returned by /content/transcribe-audio.
type TranscriptionResult struct {
	Success    bool   `json:"success" msgpack:"success"`
	JobID      string `json:"job_id" msgpack:"job_id"`
	Transcript string `json:"transcript" msgpack:"transcript"`
	FileName   string `json:"file_name" msgpack:"file_name"`
}
