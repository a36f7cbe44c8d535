package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/objectstore"
	"ai-docchat-be/pkg/rag/answer"
	"ai-docchat-be/pkg/rag/images"
	"ai-docchat-be/pkg/rag/rerank"
	"ai-docchat-be/pkg/rag/search"
	"ai-docchat-be/pkg/rag/transform"
	"ai-docchat-be/pkg/rag/verify"
	"ai-docchat-be/pkg/vectorstore"
)

// scriptedLLM answers each call from a role-keyed script so one fake
// can serve the transformer, reranker, verifier and synthesizer.
type scriptedLLM struct {
	calls     int
	responses []string
	err       error
}

func (f *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	response := f.responses[0]
	f.responses = f.responses[1:]
	return response, nil
}

func (f *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5}},
	}, nil
}

type fakeStore struct {
	hits []vectorstore.Hit
	err  error
}

func (f *fakeStore) SearchSimilar(ctx context.Context, emb []float32, limit int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
	return f.hits, f.err
}

func (f *fakeStore) ListDocuments(ctx context.Context) ([]vectorstore.DocumentInfo, error) {
	return nil, nil
}

func (f *fakeStore) Stats(ctx context.Context) (vectorstore.Stats, error) {
	return vectorstore.Stats{}, nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

type fakeFetcher struct{}

func (f *fakeFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	return nil, errors.New("no images in tests")
}

var _ objectstore.Fetcher = &fakeFetcher{}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func defaultHits() []vectorstore.Hit {
	return []vectorstore.Hit{
		{ID: "a", Content: "benchmark results on page four", DocumentName: "paper.pdf", PageNumber: 4, Similarity: 0.91},
		{ID: "b", Content: "methodology details", DocumentName: "paper.pdf", PageNumber: 2, Similarity: 0.82},
		{ID: "c", Content: "appendix tables", DocumentName: "appendix.pdf", PageNumber: 1, Similarity: 0.60},
	}
}

func buildPipeline(llmFake llm.LLMProvider, embedder *fakeEmbedder, vstore vectorstore.Store, opts Options) *Pipeline {
	logger := testLogger()
	return New(
		transform.NewTransformer(llmFake, 100, logger),
		search.NewRetriever(embedder, vstore, logger),
		images.NewEnricher(&fakeFetcher{}, 10, logger),
		rerank.NewLLMReranker(llmFake, opts.MaxCandidates, true, logger),
		verify.NewVerifier(llmFake, logger),
		answer.NewSynthesizer(llmFake, logger),
		opts,
		logger,
	)
}

func TestConversationalShortCircuit(t *testing.T) {
	llmFake := &scriptedLLM{}
	embedder := &fakeEmbedder{}
	p := buildPipeline(llmFake, embedder, &fakeStore{hits: defaultHits()}, DefaultOptions())

	result := p.SearchAndAnswer(context.Background(), "hello", nil)

	if result.RequiresRAG {
		t.Error("greeting must not require retrieval")
	}
	if result.Answer != greetingReply {
		t.Errorf("answer = %q, want greeting reply", result.Answer)
	}
	if llmFake.calls != 0 {
		t.Errorf("short-circuit made %d model calls, want 0", llmFake.calls)
	}
	if embedder.calls != 0 {
		t.Errorf("short-circuit made %d embedding calls, want 0", embedder.calls)
	}
	if result.Err != nil {
		t.Errorf("conversational turn is not an error: %+v", result.Err)
	}
}

func TestFullRunProducesGroundedAnswer(t *testing.T) {
	llmFake := &scriptedLLM{responses: []string{
		"SelectedIndices: [1, 2]\nJustification: both cover the benchmarks", // rerank
		"Yes", // verify
		"The paper reports its benchmarks on page 4 (paper.pdf).", // synthesize
	}}
	p := buildPipeline(llmFake, &fakeEmbedder{}, &fakeStore{hits: defaultHits()}, DefaultOptions())

	result := p.SearchAndAnswer(context.Background(), "what do the benchmark tables show?", nil)

	if result.Err != nil {
		t.Fatalf("unexpected error: %+v", result.Err)
	}
	if !result.RequiresRAG {
		t.Error("document question should require retrieval")
	}
	if len(result.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(result.Sources))
	}
	if result.Sources[0].DocumentName != "paper.pdf" || result.Sources[0].PageNumber != 4 {
		t.Errorf("first source = %+v, want paper.pdf p.4", result.Sources[0])
	}
	if result.Justification != "both cover the benchmarks" {
		t.Errorf("justification = %q", result.Justification)
	}
	if result.TotalCandidates != 3 {
		t.Errorf("total candidates = %d, want 3", result.TotalCandidates)
	}
	if !strings.Contains(result.SelectedPages, "paper.pdf (p.4)") {
		t.Errorf("selected pages = %q", result.SelectedPages)
	}
}

func TestEmbeddingFailureIsResultValue(t *testing.T) {
	p := buildPipeline(&scriptedLLM{}, &fakeEmbedder{err: errors.New("api down")},
		&fakeStore{hits: defaultHits()}, DefaultOptions())

	result := p.SearchAndAnswer(context.Background(), "what do the benchmark tables show?", nil)

	if result.Err == nil || result.Err.Kind != ErrKindEmbedding {
		t.Fatalf("expected embedding failure, got %+v", result.Err)
	}
	if result.Answer == "" {
		t.Error("failure results still need user-facing text")
	}
}

func TestNoCandidatesIsResultValue(t *testing.T) {
	p := buildPipeline(&scriptedLLM{}, &fakeEmbedder{}, &fakeStore{}, DefaultOptions())

	result := p.SearchAndAnswer(context.Background(), "what do the benchmark tables show?", nil)

	if result.Err == nil || result.Err.Kind != ErrKindNoCandidates {
		t.Fatalf("expected no-candidates failure, got %+v", result.Err)
	}
	if result.Answer != notFoundReply {
		t.Errorf("answer = %q, want not-found reply", result.Answer)
	}
}

func TestVerificationGateBlocksAnswer(t *testing.T) {
	llmFake := &scriptedLLM{responses: []string{
		"SelectedIndices: [1]\nJustification: closest match", // rerank
		"No", // verify
	}}
	p := buildPipeline(llmFake, &fakeEmbedder{}, &fakeStore{hits: defaultHits()}, DefaultOptions())

	result := p.SearchAndAnswer(context.Background(), "what do the benchmark tables show?", nil)

	if result.Err == nil || result.Err.Kind != ErrKindInsufficientEvidence {
		t.Fatalf("expected insufficient evidence, got %+v", result.Err)
	}
	if len(result.Sources) != 0 {
		t.Error("rejected runs must not cite sources")
	}
	// rerank + verify, but never synthesis
	if llmFake.calls != 2 {
		t.Errorf("made %d model calls, want 2", llmFake.calls)
	}
}

func TestRerankingDisabledUsesOrder(t *testing.T) {
	llmFake := &scriptedLLM{responses: []string{
		"Yes",                 // verify
		"order based answer",  // synthesize
	}}
	opts := DefaultOptions()
	opts.EnableReranking = false
	p := buildPipeline(llmFake, &fakeEmbedder{}, &fakeStore{hits: defaultHits()}, opts)

	result := p.SearchAndAnswer(context.Background(), "what do the benchmark tables show?", nil)

	if result.Err != nil {
		t.Fatalf("unexpected error: %+v", result.Err)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(result.Sources))
	}
	if result.Sources[0].PageNumber != 4 || result.Sources[1].PageNumber != 2 {
		t.Error("disabled reranking must keep retrieval order")
	}
}

func TestStatsExposesConfig(t *testing.T) {
	p := buildPipeline(&scriptedLLM{}, &fakeEmbedder{}, &fakeStore{}, DefaultOptions())

	stats := p.Stats()
	cfg, ok := stats["pipeline_config"].(Config)
	if !ok {
		t.Fatal("stats must carry the pipeline config")
	}
	if cfg.MaxCandidates != 10 || cfg.MaxSelected != 2 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
