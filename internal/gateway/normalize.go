package gateway

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/learnable-ai/companion/internal/models"
)

// normalizeQuiz rewrites letter answers ("B", "b)", "Option C") to the text of
// the matching option so that correct_answer is always one of the options.
func normalizeQuiz(q *models.QuizResult) {
	for i := range q.Quiz {
		item := &q.Quiz[i]
		item.CorrectAnswer = resolveAnswer(item.CorrectAnswer, item.Options)
	}
	if q.NumQuestions == 0 {
		q.NumQuestions = len(q.Quiz)
	}
}

func resolveAnswer(answer string, options []string) string {
	for _, opt := range options {
		if opt == answer {
			return answer
		}
	}
	trimmed := strings.TrimSpace(answer)
	for _, opt := range options {
		if strings.TrimSpace(opt) == trimmed {
			return opt
		}
	}

	letter := strings.ToUpper(trimmed)
	letter = strings.TrimPrefix(letter, "OPTION ")
	letter = strings.TrimRight(letter, ").:")
	if len(letter) == 1 && letter[0] >= 'A' && letter[0] <= 'Z' {
		idx := int(letter[0] - 'A')
		if idx < len(options) {
			return options[idx]
		}
	}

	// "B) Chlorophyll" style answers carry the option text after the label.
	if len(trimmed) > 2 && (trimmed[1] == ')' || trimmed[1] == '.') {
		rest := strings.TrimSpace(trimmed[2:])
		for _, opt := range options {
			if strings.TrimSpace(opt) == rest {
				return opt
			}
		}
	}
	return answer
}

func normalizeFlashcards(f *models.FlashcardsResult) {
	if f.TotalCards == 0 {
		f.TotalCards = len(f.Flashcards)
	}
}

// stripCodeFence removes a ```json ... ``` wrapper some model proxies leave
// around the payload.
func stripCodeFence(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("```")) {
		return raw
	}
	trimmed = bytes.TrimPrefix(trimmed, []byte("```json"))
	trimmed = bytes.TrimPrefix(trimmed, []byte("```"))
	trimmed = bytes.TrimSuffix(bytes.TrimSpace(trimmed), []byte("```"))
	return bytes.TrimSpace(trimmed)
}

// nestedPayloadFields may arrive as a JSON string holding the real payload,
// often fenced.
var nestedPayloadFields = []string{"mindmap", "flashcards"}

// unfenceFields replaces string-valued payload fields with the JSON they
// carry. Raw is returned unchanged when nothing needs rewriting.
func unfenceFields(raw []byte) []byte {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}
	changed := false
	for _, key := range nestedPayloadFields {
		v, ok := obj[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(v, &text); err != nil {
			continue
		}
		inner := stripCodeFence([]byte(text))
		if !json.Valid(inner) {
			continue
		}
		obj[key] = json.RawMessage(inner)
		changed = true
	}
	if !changed {
		return raw
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return out
}
