// FILE: internal/service/chat_service_test.go
package service

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/rag/session"
	"ai-docchat-be/pkg/vectorstore"
)

type fakeVectorStore struct {
	pingErr error
}

func (f *fakeVectorStore) SearchSimilar(ctx context.Context, emb []float32, limit int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
	return nil, nil
}

func (f *fakeVectorStore) ListDocuments(ctx context.Context) ([]vectorstore.DocumentInfo, error) {
	return nil, nil
}

func (f *fakeVectorStore) Stats(ctx context.Context) (vectorstore.Stats, error) {
	return vectorstore.Stats{}, nil
}

func (f *fakeVectorStore) Ping(ctx context.Context) error {
	return f.pingErr
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{}, nil
}

func newHealthTestService(store vectorstore.Store, embedder embedding.EmbeddingProvider) IChatService {
	logger := log.New(io.Discard, "", 0)
	return NewChatService(
		nil,
		nil,
		store,
		embedder,
		session.NewManager(nil, 5, logger),
		memory.NewHistoryRepository(5),
		nil,
		nil,
		logger,
	)
}

func TestHealthReportsAllComponentsOk(t *testing.T) {
	svc := newHealthTestService(&fakeVectorStore{}, &fakeEmbedder{})

	res := svc.Health(context.Background())

	if res.Status != "healthy" {
		t.Errorf("status = %q, want healthy", res.Status)
	}
	if res.Components["vector_store"] != "ok" {
		t.Errorf("vector_store = %q, want ok", res.Components["vector_store"])
	}
	if res.Components["embedding_provider"] != "ok" {
		t.Errorf("embedding_provider = %q, want ok", res.Components["embedding_provider"])
	}
}

func TestHealthDegradedWhenVectorStoreDown(t *testing.T) {
	svc := newHealthTestService(&fakeVectorStore{pingErr: errors.New("connection refused")}, &fakeEmbedder{})

	res := svc.Health(context.Background())

	if res.Status != "degraded" {
		t.Errorf("status = %q, want degraded", res.Status)
	}
	if res.Components["embedding_provider"] != "ok" {
		t.Error("embedding probe should still run when the store is down")
	}
}

func TestHealthDegradedWhenEmbedderDown(t *testing.T) {
	svc := newHealthTestService(&fakeVectorStore{}, &fakeEmbedder{err: errors.New("quota exceeded")})

	res := svc.Health(context.Background())

	if res.Status != "degraded" {
		t.Errorf("status = %q, want degraded", res.Status)
	}
	if res.Components["vector_store"] != "ok" {
		t.Error("vector store probe should be unaffected by the embedder")
	}
}
