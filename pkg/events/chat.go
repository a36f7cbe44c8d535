package events

import "time"

// NewChatExchangeCompleted reports one finished question/answer
// exchange, with the pipeline latency and provenance count.
func NewChatExchangeCompleted(sessionID, query string, elapsed time.Duration, sourceCount int, requiresRAG bool) Event {
	return BaseEvent{
		Type: "CHAT_EXCHANGE_COMPLETED",
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"query":        query,
			"latency_ms":   elapsed.Milliseconds(),
			"source_count": sourceCount,
			"requires_rag": requiresRAG,
		},
		OccurredAt: time.Now(),
	}
}

// NewChatTurnRecorded reports that a conversation turn was persisted to
// the memory service. Content is intentionally omitted from the payload.
func NewChatTurnRecorded(sessionID, userID, role string) Event {
	return BaseEvent{
		Type: "CHAT_TURN_RECORDED",
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
			"role":       role,
		},
		OccurredAt: time.Now(),
	}
}
