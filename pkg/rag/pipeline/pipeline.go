package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/rag/answer"
	"ai-docchat-be/pkg/rag/images"
	"ai-docchat-be/pkg/rag/rerank"
	"ai-docchat-be/pkg/rag/search"
	"ai-docchat-be/pkg/rag/transform"
	"ai-docchat-be/pkg/rag/verify"
	"ai-docchat-be/pkg/store"
	"ai-docchat-be/pkg/vectorstore"
)

// Options tune one pipeline instance.
type Options struct {
	MaxCandidates      int
	MaxSelected        int
	RetrievalThreshold float64
	EnableReranking    bool
	EnableImageFetch   bool
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MaxCandidates:    10,
		MaxSelected:      2,
		EnableReranking:  true,
		EnableImageFetch: true,
	}
}

// Pipeline orchestrates transform, retrieve, enrich, rerank, verify
// and synthesize into one run. Every outcome is a Result value.
type Pipeline struct {
	transformer *transform.Transformer
	retriever   *search.Retriever
	enricher    *images.Enricher
	reranker    rerank.Reranker
	verifier    *verify.Verifier
	synthesizer *answer.Synthesizer
	opts        Options
	logger      *log.Logger
}

// New wires a pipeline from its stages.
func New(
	transformer *transform.Transformer,
	retriever *search.Retriever,
	enricher *images.Enricher,
	reranker rerank.Reranker,
	verifier *verify.Verifier,
	synthesizer *answer.Synthesizer,
	opts Options,
	logger *log.Logger,
) *Pipeline {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 10
	}
	if opts.MaxSelected <= 0 {
		opts.MaxSelected = 2
	}
	return &Pipeline{
		transformer: transformer,
		retriever:   retriever,
		enricher:    enricher,
		reranker:    reranker,
		verifier:    verifier,
		synthesizer: synthesizer,
		opts:        opts,
		logger:      logger,
	}
}

// SearchAndAnswer runs the full pipeline without session memory.
func (p *Pipeline) SearchAndAnswer(ctx context.Context, query string, history []llm.Message) *Result {
	return p.SearchAndAnswerWithContext(ctx, query, history, "")
}

// SearchAndAnswerWithContext runs the full pipeline, threading a
// conversation context block (memory summary plus recent turns) into
// the answer prompt.
func (p *Pipeline) SearchAndAnswerWithContext(ctx context.Context, query string, history []llm.Message, conversationContext string) *Result {
	p.logger.Printf("[PIPELINE] === STARTING RAG PIPELINE ===")
	p.logger.Printf("[PIPELINE] Query: '%s'", query)

	result := &Result{
		Query:  query,
		Config: p.config(),
	}

	// ═══════════════════════════════════════════════════════════════
	// STAGE 1: QUERY TRANSFORMATION
	// ═══════════════════════════════════════════════════════════════
	currentHistory := append(append([]llm.Message{}, history...), llm.Message{Role: "user", Content: query})
	tq := p.transformer.Transform(ctx, currentHistory)
	result.TransformedQuery = tq.Transformed

	p.logger.Printf("[PIPELINE] Transformed query: '%s'", tq.Transformed)

	if !tq.NeedsRetrieval {
		p.logger.Printf("[PIPELINE] Query needs no retrieval, answering directly")
		result.Answer = conversationalReply(query)
		result.RequiresRAG = false
		return result
	}
	result.RequiresRAG = true

	// ═══════════════════════════════════════════════════════════════
	// STAGE 2: CANDIDATE RETRIEVAL
	// ═══════════════════════════════════════════════════════════════
	candidates, err := p.retriever.Retrieve(ctx, tq.Transformed, vectorstore.Filter{}, search.Config{
		TopK:      p.opts.MaxCandidates,
		Threshold: p.opts.RetrievalThreshold,
	})
	if err != nil {
		return p.retrievalFailure(result, err)
	}
	result.TotalCandidates = len(candidates)
	p.logger.Printf("[PIPELINE] Found %d candidates", len(candidates))

	// ═══════════════════════════════════════════════════════════════
	// STAGE 3: IMAGE ENRICHMENT (best-effort)
	// ═══════════════════════════════════════════════════════════════
	if p.opts.EnableImageFetch && p.enricher != nil {
		candidates = p.enricher.Enrich(ctx, candidates)
	}

	// ═══════════════════════════════════════════════════════════════
	// STAGE 4: RERANKING
	// ═══════════════════════════════════════════════════════════════
	var selected []store.Candidate
	if p.opts.EnableReranking && p.reranker != nil {
		decision := p.reranker.Rerank(ctx, tq.Transformed, candidates, p.opts.MaxSelected)
		selected = decision.Selected
		result.Justification = decision.Justification
	} else {
		n := p.opts.MaxSelected
		if n > len(candidates) {
			n = len(candidates)
		}
		selected = candidates[:n]
		result.Justification = fmt.Sprintf("Top %d results by similarity", n)
	}
	p.logger.Printf("[PIPELINE] Selected %d final documents", len(selected))

	// ═══════════════════════════════════════════════════════════════
	// STAGE 5: RELEVANCE VERIFICATION
	// ═══════════════════════════════════════════════════════════════
	if !p.verifier.Verify(ctx, tq.Transformed, selected) {
		p.logger.Printf("[PIPELINE] Verification rejected the selection")
		result.Answer = insufficientReply
		result.Err = &ResultError{
			Kind:    ErrKindInsufficientEvidence,
			Message: insufficientReply,
		}
		return result
	}

	// ═══════════════════════════════════════════════════════════════
	// STAGE 6: ANSWER SYNTHESIS
	// ═══════════════════════════════════════════════════════════════
	result.Answer = p.synthesizer.Synthesize(ctx, tq.Transformed, selected, conversationContext)
	result.Sources = sources(selected)
	result.SelectedPages = selectedPages(selected)

	p.logger.Printf("[PIPELINE] === RAG PIPELINE COMPLETED ===")
	return result
}

func (p *Pipeline) retrievalFailure(result *Result, err error) *Result {
	switch {
	case errors.Is(err, search.ErrEmbeddingFailed):
		p.logger.Printf("[ERROR] Pipeline stopped at embedding: %v", err)
		result.Answer = embeddingFailMsg
		result.Err = &ResultError{Kind: ErrKindEmbedding, Message: err.Error()}
	case errors.Is(err, search.ErrNoCandidates):
		p.logger.Printf("[PIPELINE] No relevant documents found")
		result.Answer = notFoundReply
		result.Err = &ResultError{Kind: ErrKindNoCandidates, Message: err.Error()}
	default:
		p.logger.Printf("[ERROR] Pipeline stopped at retrieval: %v", err)
		result.Answer = internalErrorMsg
		result.Err = &ResultError{Kind: ErrKindInternal, Message: err.Error()}
	}
	return result
}

func (p *Pipeline) config() Config {
	return Config{
		MaxCandidates:     p.opts.MaxCandidates,
		MaxSelected:       p.opts.MaxSelected,
		RerankingEnabled:  p.opts.EnableReranking,
		ImageFetchEnabled: p.opts.EnableImageFetch,
	}
}

// Stats reports the live component state for the stats endpoint.
func (p *Pipeline) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"pipeline_config": p.config(),
		"query_transformer": map[string]int{
			"cache_size": p.transformer.CacheSize(),
		},
	}
	if p.enricher != nil {
		stats["image_cache"] = map[string]int{
			"cache_size": p.enricher.CacheSize(),
		}
	}
	return stats
}

func sources(selected []store.Candidate) []store.Source {
	out := make([]store.Source, len(selected))
	for i, c := range selected {
		out[i] = store.SourceFromCandidate(c)
	}
	return out
}

func selectedPages(selected []store.Candidate) string {
	parts := make([]string, len(selected))
	for i, c := range selected {
		parts[i] = fmt.Sprintf("%s (p.%d)", c.DocumentName, c.PageNumber)
	}
	return strings.Join(parts, " + ")
}
