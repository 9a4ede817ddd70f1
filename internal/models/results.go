package models

// ProcessingResults accumulates generated artifacts, one slot per kind.
// Values are treated as immutable; the orchestrator replaces the whole record
// on every merge.
type ProcessingResults struct {
	Summary     *SummaryResult    `json:"summary,omitempty" msgpack:"summary,omitempty"`
	Mindmap     *MindmapResult    `json:"mindmap,omitempty" msgpack:"mindmap,omitempty"`
	Quiz        *QuizResult       `json:"quiz,omitempty" msgpack:"quiz,omitempty"`
	Flashcards  *FlashcardsResult `json:"flashcards,omitempty" msgpack:"flashcards,omitempty"`
	ContentType string            `json:"contentType,omitempty" msgpack:"contentType,omitempty"`
}

// Has reports whether the slot for kind is filled.
func (r ProcessingResults) Has(kind ArtifactKind) bool {
	switch kind {
	case ArtifactSummary:
		return r.Summary != nil
	case ArtifactMindmap:
		return r.Mindmap != nil
	case ArtifactQuiz:
		return r.Quiz != nil
	case ArtifactFlashcards:
		return r.Flashcards != nil
	}
	return false
}

// Empty reports whether no artifact has been generated yet.
func (r ProcessingResults) Empty() bool {
	return r.Summary == nil && r.Mindmap == nil && r.Quiz == nil && r.Flashcards == nil
}
