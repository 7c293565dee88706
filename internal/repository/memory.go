package repository

import (
	"context"

	"github.com/futig/jarvis-backend/internal/entity"
)

// MemoryRepository is a vector memory store together with the lifecycle of
// the index that backs it
type MemoryRepository interface {
	Query(ctx context.Context, vector []float32, topK int) ([]entity.MemoryMatch, error)
	Upsert(ctx context.Context, records []entity.MemoryRecord) error
	EnsureIndex(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
}

var (
	_ MemoryRepository = &MemoryChromem{}
	_ MemoryRepository = &MemoryPostgres{}
)
