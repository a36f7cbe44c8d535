package search

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/vectorstore"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
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

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{err: errors.New("api down")}, &fakeStore{}, testLogger())

	_, err := r.Retrieve(context.Background(), "query", vectorstore.Filter{}, DefaultConfig())
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Errorf("expected ErrEmbeddingFailed, got %v", err)
	}
}

func TestRetrieveSearchFailure(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{err: errors.New("db down")}, testLogger())

	_, err := r.Retrieve(context.Background(), "query", vectorstore.Filter{}, DefaultConfig())
	if !errors.Is(err, ErrSearchFailed) {
		t.Errorf("expected ErrSearchFailed, got %v", err)
	}
}

func TestRetrieveNoCandidates(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{}, testLogger())

	_, err := r.Retrieve(context.Background(), "query", vectorstore.Filter{}, DefaultConfig())
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("expected ErrNoCandidates, got %v", err)
	}
}

func TestRetrieveFiltersAndDeduplicates(t *testing.T) {
	hits := []vectorstore.Hit{
		{ID: "a", Content: "first", DocumentName: "doc.pdf", PageNumber: 1, Similarity: 0.9, ImageRef: "img/doc-1.png"},
		{ID: "a", Content: "first again", DocumentName: "doc.pdf", PageNumber: 1, Similarity: 0.9},
		{ID: "b", Content: "second", DocumentName: "doc.pdf", PageNumber: 2, Similarity: 0.5},
		{ID: "c", Content: "below threshold", DocumentName: "doc.pdf", PageNumber: 3, Similarity: 0.1},
	}
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{hits: hits}, testLogger())

	candidates, err := r.Retrieve(context.Background(), "query", vectorstore.Filter{}, Config{TopK: 10, Threshold: 0.3})
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if candidates[0].ID != "a" || candidates[1].ID != "b" {
		t.Errorf("unexpected order: %s, %s", candidates[0].ID, candidates[1].ID)
	}
	if !candidates[0].HasImage {
		t.Error("candidate with image ref should report HasImage")
	}
	if candidates[1].HasImage {
		t.Error("candidate without image ref should not report HasImage")
	}
}
