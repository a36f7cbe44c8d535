package memory

import "testing"

func TestGetOrCreateReturnsSameWindow(t *testing.T) {
	repo := NewHistoryRepository(5)

	window := repo.GetOrCreate("session-1")
	window.Append("user", "hello")

	again := repo.GetOrCreate("session-1")
	if again != window {
		t.Fatal("expected the same window for the same session")
	}
	if again.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", again.Len())
	}
}

func TestWindowsAreIsolatedPerSession(t *testing.T) {
	repo := NewHistoryRepository(5)

	repo.GetOrCreate("session-a").Append("user", "a")
	other := repo.GetOrCreate("session-b")

	if other.Len() != 0 {
		t.Fatalf("expected empty window for new session, got %d messages", other.Len())
	}
}

func TestDeleteRemovesWindow(t *testing.T) {
	repo := NewHistoryRepository(5)

	repo.GetOrCreate("session-1").Append("user", "hello")
	repo.Delete("session-1")

	if _, found := repo.Get("session-1"); found {
		t.Fatal("expected window to be gone after delete")
	}
}

func TestWindowRespectsHistoryLimit(t *testing.T) {
	repo := NewHistoryRepository(3)

	window := repo.GetOrCreate("session-1")
	for i := 0; i < 5; i++ {
		window.Append("user", "msg")
	}

	if window.Len() != 3 {
		t.Fatalf("expected window capped at 3, got %d", window.Len())
	}
}
