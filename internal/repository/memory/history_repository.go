package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-docchat-be/pkg/rag/history"
)

// HistoryRepository keeps one rolling conversation window per session.
// Windows expire after an hour of inactivity so abandoned sessions do
// not accumulate.
type HistoryRepository struct {
	cache        *cache.Cache
	historyLimit int
}

func NewHistoryRepository(historyLimit int) *HistoryRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &HistoryRepository{
		cache:        c,
		historyLimit: historyLimit,
	}
}

// GetOrCreate returns the window for a session, creating an empty one
// on first use. Every access refreshes the expiration.
func (r *HistoryRepository) GetOrCreate(sessionID string) *history.Window {
	if x, found := r.cache.Get(sessionID); found {
		window := x.(*history.Window)
		r.cache.Set(sessionID, window, cache.DefaultExpiration)
		return window
	}
	window := history.NewWindow(r.historyLimit)
	r.cache.Set(sessionID, window, cache.DefaultExpiration)
	return window
}

func (r *HistoryRepository) Get(sessionID string) (*history.Window, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*history.Window), true
	}
	return nil, false
}

func (r *HistoryRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
