package ingest

import (
	"context"
	"time"

	"mimir-backend/pkg/chroma"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Embedding links a vector-index document back to the task it was built
// from and records which embedding provider produced it. Append-only: rows
// support auditing the semantic-dedup index, nothing reads them back into
// tasks.
type Embedding struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index;not null"`
	SourceKind string    `json:"source_kind,omitempty"`
	SourceID   string    `json:"source_id,omitempty"`
	VectorID   string    `json:"vector_id,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingRepository records embedding rows.
type EmbeddingRepository interface {
	Create(embedding *Embedding) error
}

type gormEmbeddingRepository struct {
	db *gorm.DB
}

func NewGormEmbeddingRepository(db *gorm.DB) EmbeddingRepository {
	return &gormEmbeddingRepository{db: db}
}

func (r *gormEmbeddingRepository) Create(embedding *Embedding) error {
	if embedding.ID == "" {
		embedding.ID = uuid.New().String()
	}
	if embedding.CreatedAt.IsZero() {
		embedding.CreatedAt = time.Now()
	}
	return r.db.Create(embedding).Error
}

// VectorIndex is the slice of the vector store the pipeline consumes:
// namespaced upsert plus nearest-neighbor lookup. pkg/chroma implements
// it; tests use fakes.
type VectorIndex interface {
	Upsert(ctx context.Context, namespace, id, text string, metadata map[string]interface{}) error
	NearestNeighbor(ctx context.Context, namespace, text string, k int) ([]chroma.Neighbor, error)
}
