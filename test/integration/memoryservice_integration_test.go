package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ai-docchat-be/pkg/memoryservice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMemoryServer mimics the Zep-compatible REST surface the client
// talks to: users, sessions and per-session memory.
type fakeMemoryServer struct {
	mu       sync.Mutex
	users    map[string]bool
	sessions map[string]bool
	messages map[string][]memoryservice.Turn
	context  string
}

func newFakeMemoryServer() *fakeMemoryServer {
	return &fakeMemoryServer{
		users:    map[string]bool{},
		sessions: map[string]bool{},
		messages: map[string][]memoryservice.Turn{},
	}
}

func (f *fakeMemoryServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v2/users", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.users[payload["user_id"]] = true
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/api/v2/users/", func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimPrefix(r.URL.Path, "/api/v2/users/")
		f.mu.Lock()
		known := f.users[userID]
		f.mu.Unlock()
		if !known {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": userID})
	})

	mux.HandleFunc("/api/v2/sessions", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.sessions[payload["session_id"]] = true
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/api/v2/sessions/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v2/sessions/")

		if strings.HasSuffix(rest, "/memory") {
			sessionID := strings.TrimSuffix(rest, "/memory")
			switch r.Method {
			case http.MethodPost:
				var payload struct {
					Messages []memoryservice.Turn `json:"messages"`
				}
				_ = json.NewDecoder(r.Body).Decode(&payload)
				f.mu.Lock()
				f.messages[sessionID] = append(f.messages[sessionID], payload.Messages...)
				f.mu.Unlock()
				w.WriteHeader(http.StatusCreated)
			default:
				f.mu.Lock()
				turns := f.messages[sessionID]
				f.mu.Unlock()
				_ = json.NewEncoder(w).Encode(memoryservice.Memory{
					Context:  f.context,
					Messages: turns,
				})
			}
			return
		}

		f.mu.Lock()
		known := f.sessions[rest]
		f.mu.Unlock()
		if !known {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"session_id": rest})
	})

	return mux
}

func TestMemoryServiceClientFlow(t *testing.T) {
	fake := newFakeMemoryServer()
	fake.context = "The user keeps asking about latency benchmarks."
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := memoryservice.NewClient(server.URL, "test-key")
	ctx := context.Background()

	// First resolution creates user and session
	sessionCtx, err := client.EnsureContext(ctx, "session-1", "user-1", 5)
	require.NoError(t, err)
	assert.True(t, sessionCtx.IsNewSession)
	assert.Equal(t, "session-1", sessionCtx.SessionID)
	assert.Empty(t, sessionCtx.RecentHistory)

	// Record a full exchange
	err = client.AddMessages(ctx, "session-1", []memoryservice.Turn{
		{Role: "user", Content: "What does the benchmark measure?"},
		{Role: "assistant", Content: "It measures retrieval latency per query."},
	})
	require.NoError(t, err)

	// Second resolution finds the existing session with history
	sessionCtx, err = client.EnsureContext(ctx, "session-1", "user-1", 5)
	require.NoError(t, err)
	assert.False(t, sessionCtx.IsNewSession)
	assert.Len(t, sessionCtx.RecentHistory, 2)
	assert.Equal(t, fake.context, sessionCtx.MemoryContext)
}

func TestMemoryServiceClientRecentLimit(t *testing.T) {
	fake := newFakeMemoryServer()
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := memoryservice.NewClient(server.URL, "")
	ctx := context.Background()

	var turns []memoryservice.Turn
	for i := 0; i < 8; i++ {
		turns = append(turns, memoryservice.Turn{Role: "user", Content: "turn"})
	}
	require.NoError(t, client.AddMessages(ctx, "session-2", turns))

	sessionCtx, err := client.EnsureContext(ctx, "session-2", "user-2", 3)
	require.NoError(t, err)
	assert.Len(t, sessionCtx.RecentHistory, 3)

	recent, err := client.GetRecentMessages(ctx, "session-2", 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	summary, err := client.GetSummary(ctx, "session-2")
	require.NoError(t, err)
	assert.Empty(t, summary)
}
