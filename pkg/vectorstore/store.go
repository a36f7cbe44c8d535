package vectorstore

import (
	"context"
)

// Hit is a single similarity search result.
type Hit struct {
	ID           string
	Content      string
	DocumentName string
	PageNumber   int
	Similarity   float64
	ImageRef     string
	Metadata     map[string]interface{}
}

// DocumentInfo summarizes one indexed document.
type DocumentInfo struct {
	DocumentName string `json:"document_name"`
	ChunkCount   int64  `json:"chunk_count"`
	PageCount    int64  `json:"page_count"`
	WithImages   int64  `json:"with_images"`
}

// Stats describes the overall index.
type Stats struct {
	TotalChunks    int64 `json:"total_chunks"`
	TotalDocuments int64 `json:"total_documents"`
	WithImages     int64 `json:"with_images"`
}

// Filter narrows a search to a single document. Zero value means no filter.
type Filter struct {
	DocumentName string
}

// Store is the contract for the chunk index.
type Store interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int, filter Filter) ([]Hit, error)
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
}
