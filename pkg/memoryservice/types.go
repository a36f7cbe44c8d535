package memoryservice

// Turn is one recorded conversation message.
type Turn struct {
	Role    string `json:"role_type"`
	Content string `json:"content"`
}

// Memory is what the memory service hands back for a session: a
// synthesized context block plus the most recent raw messages.
type Memory struct {
	Context  string `json:"context"`
	Messages []Turn `json:"messages"`
}

// SessionContext is the resolved state for one chat session.
type SessionContext struct {
	SessionID     string
	UserID        string
	MemoryContext string
	RecentHistory []Turn
	IsNewSession  bool
}
