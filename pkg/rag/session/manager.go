package session

import (
	"context"
	"log"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/memoryservice"
	"ai-docchat-be/pkg/rag/answer"
)

// MemoryClient is the slice of the memory service the manager needs.
type MemoryClient interface {
	EnsureContext(ctx context.Context, sessionID, userID string, recentLimit int) (*memoryservice.SessionContext, error)
	AddMessages(ctx context.Context, sessionID string, turns []memoryservice.Turn) error
}

// Manager resolves per-session conversational memory. The memory
// service is an enrichment, never a dependency: every failure here
// degrades to an empty context and the pipeline keeps going.
type Manager struct {
	client      MemoryClient
	logger      *log.Logger
	recentLimit int
}

func NewManager(client MemoryClient, recentLimit int, logger *log.Logger) *Manager {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &Manager{
		client:      client,
		logger:      logger,
		recentLimit: recentLimit,
	}
}

// Resolve loads the session context, creating user and session on the
// way. On failure it returns an empty context for the same session.
func (m *Manager) Resolve(ctx context.Context, sessionID, userID string) *memoryservice.SessionContext {
	if m.client == nil || sessionID == "" || userID == "" {
		return &memoryservice.SessionContext{SessionID: sessionID, UserID: userID, IsNewSession: true}
	}

	sc, err := m.client.EnsureContext(ctx, sessionID, userID, m.recentLimit)
	if err != nil {
		m.logger.Printf("[WARN] Memory service unavailable, continuing without context: %v", err)
		return &memoryservice.SessionContext{SessionID: sessionID, UserID: userID, IsNewSession: true}
	}

	m.logger.Printf("[DEBUG] Session context: %d chars, %d recent msgs, new=%v",
		len(sc.MemoryContext), len(sc.RecentHistory), sc.IsNewSession)
	return sc
}

// RecordTurn appends one turn to the session transcript, best-effort.
func (m *Manager) RecordTurn(ctx context.Context, sessionID, role, content string) {
	if m.client == nil || sessionID == "" {
		return
	}
	err := m.client.AddMessages(ctx, sessionID, []memoryservice.Turn{{Role: role, Content: content}})
	if err != nil {
		m.logger.Printf("[WARN] Failed to record %s turn: %v", role, err)
	}
}

// ContextBlock renders the resolved context for the answer prompt.
func (m *Manager) ContextBlock(sc *memoryservice.SessionContext) string {
	if sc == nil {
		return ""
	}
	return answer.BuildConversationContext(sc.MemoryContext, m.HistoryMessages(sc))
}

// HistoryMessages converts the recent transcript for the transformer.
func (m *Manager) HistoryMessages(sc *memoryservice.SessionContext) []llm.Message {
	if sc == nil {
		return nil
	}
	msgs := make([]llm.Message, len(sc.RecentHistory))
	for i, turn := range sc.RecentHistory {
		msgs[i] = llm.Message{Role: turn.Role, Content: turn.Content}
	}
	return msgs
}
