package ingest

import (
	"context"

	"github.com/futig/jarvis-backend/internal/entity"
)

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type MemoryStore interface {
	Upsert(ctx context.Context, records []entity.MemoryRecord) error
}
