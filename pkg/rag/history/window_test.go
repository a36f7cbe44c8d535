package history

import (
	"fmt"
	"testing"
)

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(4)

	for i := 0; i < 6; i++ {
		w.Append("user", fmt.Sprintf("message %d", i))
	}

	msgs := w.Messages()
	if len(msgs) != 4 {
		t.Fatalf("window holds %d turns, want 4", len(msgs))
	}
	if msgs[0].Content != "message 2" {
		t.Errorf("oldest surviving turn = %q, want %q", msgs[0].Content, "message 2")
	}
	if msgs[3].Content != "message 5" {
		t.Errorf("newest turn = %q, want %q", msgs[3].Content, "message 5")
	}
}

func TestWindowMessagesIsCopy(t *testing.T) {
	w := NewWindow(4)
	w.Append("user", "original")

	msgs := w.Messages()
	msgs[0].Content = "mutated"

	if w.Messages()[0].Content != "original" {
		t.Error("Messages() must return a copy")
	}
}

func TestWindowClear(t *testing.T) {
	w := NewWindow(4)
	w.Append("user", "hi")
	w.Clear()

	if w.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", w.Len())
	}
}
