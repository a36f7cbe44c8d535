package search

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/store"
	"ai-docchat-be/pkg/vectorstore"
)

// Typed failures so the pipeline can map each one to its own outcome.
var (
	ErrEmbeddingFailed = errors.New("embedding generation failed")
	ErrSearchFailed    = errors.New("vector search failed")
	ErrNoCandidates    = errors.New("no candidates found")
)

// Retriever embeds a query and pulls candidate chunks from the index.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	vectorStore       vectorstore.Store
	logger            *log.Logger
}

// NewRetriever creates a retriever over the given embedder and store.
func NewRetriever(embeddingProvider embedding.EmbeddingProvider, vectorStore vectorstore.Store, logger *log.Logger) *Retriever {
	return &Retriever{
		embeddingProvider: embeddingProvider,
		vectorStore:       vectorStore,
		logger:            logger,
	}
}

// Config encapsulates retrieval parameters
type Config struct {
	TopK      int
	Threshold float64
}

// DefaultConfig returns default retrieval configuration
func DefaultConfig() Config {
	return Config{
		TopK:      10,
		Threshold: 0.0,
	}
}

// Retrieve returns ranked candidates for the query, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter vectorstore.Filter, config Config) ([]store.Candidate, error) {
	embeddingRes, err := r.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		r.logger.Printf("[ERROR] Query embedding failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	hits, err := r.vectorStore.SearchSimilar(ctx, embeddingRes.Embedding.Values, config.TopK, filter)
	if err != nil {
		r.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	r.logger.Printf("[DEBUG] Raw search results: %d chunks", len(hits))

	candidates := r.filterAndDeduplicate(hits, config.Threshold)
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	r.logger.Printf("[DEBUG] Filtered candidates: %d chunks", len(candidates))
	return candidates, nil
}

func (r *Retriever) filterAndDeduplicate(hits []vectorstore.Hit, threshold float64) []store.Candidate {
	var candidates []store.Candidate
	seen := make(map[string]bool)

	for i, hit := range hits {
		if hit.Similarity < threshold {
			r.logger.Printf("[DEBUG] Candidate %d: Score=%.4f [FILTERED]", i+1, hit.Similarity)
			continue
		}
		if seen[hit.ID] {
			continue
		}
		seen[hit.ID] = true

		candidates = append(candidates, store.Candidate{
			ID:           hit.ID,
			Content:      hit.Content,
			DocumentName: hit.DocumentName,
			PageNumber:   hit.PageNumber,
			Similarity:   hit.Similarity,
			ImageRef:     hit.ImageRef,
			HasImage:     hit.ImageRef != "",
			Metadata:     hit.Metadata,
		})
		r.logger.Printf("[DEBUG] Candidate %d: Score=%.4f [KEEP]", i+1, hit.Similarity)
	}

	return candidates
}
