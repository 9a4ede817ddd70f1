// Package flashcards pages and flips a deck of study cards.
package flashcards

import (
	"sync"

	"github.com/learnable-ai/companion/internal/models"
)

// PageSize is how many cards are revealed at a time.
const PageSize = 12

// Viewer keeps per-card flip state and the number of visible cards.
type Viewer struct {
	mu      sync.RWMutex
	cards   []models.Flashcard
	flipped map[int]bool
	visible int
}

// NewViewer shows the first page with every card front side up.
func NewViewer(cards []models.Flashcard) *Viewer {
	cs := make([]models.Flashcard, len(cards))
	copy(cs, cards)
	return &Viewer{
		cards:   cs,
		flipped: make(map[int]bool),
		visible: min(PageSize, len(cs)),
	}
}

// Total returns the deck size.
func (v *Viewer) Total() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.cards)
}

// Flip toggles one card and returns its new state. Out of range indexes are
// ignored.
func (v *Viewer) Flip(index int) (bool, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if index < 0 || index >= len(v.cards) {
		return false, false
	}
	v.flipped[index] = !v.flipped[index]
	return v.flipped[index], true
}

// IsFlipped reports whether a card shows its back.
func (v *Viewer) IsFlipped(index int) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.flipped[index]
}

// LoadMore reveals another page and returns the new visible count.
func (v *Viewer) LoadMore() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = min(v.visible+PageSize, len(v.cards))
	return v.visible
}

// HasMore reports whether cards remain hidden.
func (v *Viewer) HasMore() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.visible < len(v.cards)
}

// Card is a visible card with its flip state.
type Card struct {
	Index int `json:"index"`
	models.Flashcard
	Flipped bool `json:"flipped"`
}

// Visible returns the revealed cards in order.
func (v *Viewer) Visible() []Card {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Card, v.visible)
	for i := 0; i < v.visible; i++ {
		out[i] = Card{Index: i, Flashcard: v.cards[i], Flipped: v.flipped[i]}
	}
	return out
}

// Snapshot is the JSON view of a Viewer.
type Snapshot struct {
	Total   int    `json:"total"`
	Visible int    `json:"visible"`
	HasMore bool   `json:"hasMore"`
	Cards   []Card `json:"cards"`
}

// Snapshot returns the visible cards and paging state.
func (v *Viewer) Snapshot() Snapshot {
	cards := v.Visible()
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot{
		Total:   len(v.cards),
		Visible: v.visible,
		HasMore: v.visible < len(v.cards),
		Cards:   cards,
	}
}
