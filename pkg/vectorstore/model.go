package vectorstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pgvector/pgvector-go"
)

type DocumentChunk struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content      string          `gorm:"type:text"`
	DocumentName string          `gorm:"type:varchar(512);not null;index"`
	PageNumber   int             `gorm:"default:0"`
	ImageRef     string          `gorm:"type:varchar(1024)"` // object store key, empty when the chunk has no image
	Embedding    pgvector.Vector `gorm:"type:vector(1024)"`  // voyage-multimodal-3 uses 1024 dimensions
	Metadata     datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
