package images

import (
	"bytes"
	"context"
	"image"
	"log"
	"sync"

	_ "image/jpeg"
	_ "image/png"

	"ai-docchat-be/pkg/objectstore"
	"ai-docchat-be/pkg/store"
)

// Enricher attaches page images to candidates. Everything here is
// best-effort: a candidate whose image cannot be fetched or decoded
// just continues without one.
type Enricher struct {
	fetcher objectstore.Fetcher
	logger  *log.Logger

	mu       sync.Mutex
	maxCache int
	cache    map[string][]byte
	order    []string
}

// NewEnricher creates an enricher with a bounded image cache.
func NewEnricher(fetcher objectstore.Fetcher, maxCacheSize int, logger *log.Logger) *Enricher {
	if maxCacheSize <= 0 {
		maxCacheSize = 100
	}
	return &Enricher{
		fetcher:  fetcher,
		logger:   logger,
		maxCache: maxCacheSize,
		cache:    make(map[string][]byte),
	}
}

// Enrich fills ImageData for every candidate that advertises an image
// ref. It never fails the batch.
func (e *Enricher) Enrich(ctx context.Context, candidates []store.Candidate) []store.Candidate {
	fetched := 0
	for i := range candidates {
		if candidates[i].ImageRef == "" {
			continue
		}
		// Failed fetches leave the candidate untouched: its image
		// reference still exists and stays part of the provenance.
		data := e.fetchImage(ctx, candidates[i].ImageRef)
		if data == nil {
			continue
		}
		candidates[i].ImageData = data
		candidates[i].HasImage = true
		fetched++
	}
	e.logger.Printf("[DEBUG] Images attached: %d/%d candidates", fetched, len(candidates))
	return candidates
}

func (e *Enricher) fetchImage(ctx context.Context, ref string) []byte {
	if data, ok := e.cacheGet(ref); ok {
		e.logger.Printf("[DEBUG] Image cache hit: %s", ref)
		return data
	}

	data, err := e.fetcher.Fetch(ctx, ref)
	if err != nil {
		e.logger.Printf("[WARN] Image fetch failed for %s: %v", ref, err)
		return nil
	}

	// Reject anything that is not a decodable image
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		e.logger.Printf("[WARN] Object %s is not a valid image: %v", ref, err)
		return nil
	}

	e.cachePut(ref, data)
	return data
}

// CacheSize exposes the current cache population for the stats endpoint.
func (e *Enricher) CacheSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

func (e *Enricher) cacheGet(ref string) ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, ok := e.cache[ref]
	return data, ok
}

func (e *Enricher) cachePut(ref string, data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.cache[ref]; exists {
		return
	}
	if len(e.cache) >= e.maxCache {
		oldest := e.order[0]
		e.order = e.order[1:]
		delete(e.cache, oldest)
	}
	e.cache[ref] = data
	e.order = append(e.order, ref)
}
