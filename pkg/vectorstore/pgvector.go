package vectorstore

import (
	"context"
	"encoding/json"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PgVectorStore struct {
	db *gorm.DB
}

var _ Store = &PgVectorStore{}

func NewPgVectorStore(db *gorm.DB) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) SearchSimilar(ctx context.Context, embedding []float32, limit int, filter Filter) ([]Hit, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding <=> query_vector) = cosine_similarity
	type result struct {
		DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := s.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, 1 - (embedding <=> ?) as similarity", queryVector)

	if filter.DocumentName != "" {
		query = query.Where("document_name = ?", filter.DocumentName)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, len(results))
	for i, res := range results {
		var metadata map[string]interface{}
		if len(res.Metadata) > 0 {
			// Metadata stays best-effort, a bad jsonb value should not kill the search
			_ = json.Unmarshal(res.Metadata, &metadata)
		}
		hits[i] = Hit{
			ID:           res.Id.String(),
			Content:      res.Content,
			DocumentName: res.DocumentName,
			PageNumber:   res.PageNumber,
			Similarity:   res.Similarity,
			ImageRef:     res.ImageRef,
			Metadata:     metadata,
		}
	}
	return hits, nil
}

func (s *PgVectorStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	var docs []DocumentInfo
	err := s.db.WithContext(ctx).
		Table("document_chunks").
		Select(`document_name,
			count(*) as chunk_count,
			count(distinct page_number) as page_count,
			count(*) filter (where image_ref <> '') as with_images`).
		Group("document_name").
		Order("document_name ASC").
		Scan(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *PgVectorStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.WithContext(ctx).
		Table("document_chunks").
		Select(`count(*) as total_chunks,
			count(distinct document_name) as total_documents,
			count(*) filter (where image_ref <> '') as with_images`).
		Scan(&stats).Error
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (s *PgVectorStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
