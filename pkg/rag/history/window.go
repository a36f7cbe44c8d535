package history

import (
	"sync"

	"ai-docchat-be/pkg/llm"
)

// Window is a fixed-capacity conversation buffer. Appending past the
// capacity drops the oldest turns, so the transform and answer stages
// always see a bounded, most-recent slice.
type Window struct {
	mu       sync.Mutex
	capacity int
	turns    []llm.Message
}

// NewWindow creates a window holding at most capacity turns.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 20
	}
	return &Window{capacity: capacity}
}

// Append records one turn, evicting the oldest when full.
func (w *Window) Append(role, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turns = append(w.turns, llm.Message{Role: role, Content: content})
	if len(w.turns) > w.capacity {
		w.turns = w.turns[len(w.turns)-w.capacity:]
	}
}

// Messages returns a copy of the buffered turns, oldest first.
func (w *Window) Messages() []llm.Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]llm.Message, len(w.turns))
	copy(out, w.turns)
	return out
}

// Len reports the number of buffered turns.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.turns)
}

// Clear drops all buffered turns.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = nil
}
