package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/entity"
)

// MemoryChromem keeps the memory index in an embedded chromem-go database,
// in memory or persisted to a directory.
type MemoryChromem struct {
	db    *chromem.DB
	index entity.IndexSpec

	mu  sync.RWMutex
	col *chromem.Collection
}

// NewMemoryChromem opens the store. An empty path keeps everything in memory.
func NewMemoryChromem(path string, index entity.IndexSpec) (*MemoryChromem, error) {
	db := chromem.NewDB()
	if path != "" {
		var err error
		db, err = chromem.NewPersistentDB(path, true)
		if err != nil {
			return nil, fmt.Errorf("open chromem db at %s: %w", path, err)
		}
	}

	return &MemoryChromem{db: db, index: index}, nil
}

// EnsureIndex creates the collection if it does not exist yet
func (r *MemoryChromem) EnsureIndex(ctx context.Context) error {
	_, err := r.collection()
	if err != nil {
		return err
	}
	ctxzap.Info(ctx, "memory collection ready", zap.String("index", r.index.Name))
	return nil
}

// DeleteIndex drops the collection with all its records
func (r *MemoryChromem) DeleteIndex(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.DeleteCollection(r.index.Name); err != nil {
		return fmt.Errorf("delete collection %s: %w", r.index.Name, err)
	}
	r.col = nil

	ctxzap.Info(ctx, "memory collection deleted", zap.String("index", r.index.Name))
	return nil
}

func (r *MemoryChromem) Query(ctx context.Context, vector []float32, topK int) ([]entity.MemoryMatch, error) {
	if len(vector) != r.index.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index %d", entity.ErrDimensionMismatch, len(vector), r.index.Dimension)
	}

	col, err := r.collection()
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults above the collection size
	n := min(topK, col.Count())
	if n <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	matches := make([]entity.MemoryMatch, 0, len(results))
	for _, res := range results {
		matches = append(matches, fromChromemResult(res))
	}
	return matches, nil
}

func (r *MemoryChromem) Upsert(ctx context.Context, records []entity.MemoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	col, err := r.collection()
	if err != nil {
		return err
	}

	for _, rec := range records {
		if len(rec.Vector) != r.index.Dimension {
			return fmt.Errorf("%w: record %s has %d dimensions, index %d",
				entity.ErrDimensionMismatch, rec.ID, len(rec.Vector), r.index.Dimension)
		}
		// AddDocument replaces an existing document with the same ID
		if err := col.AddDocument(ctx, toChromemDocument(rec)); err != nil {
			return fmt.Errorf("add document %s: %w", rec.ID, err)
		}
	}
	return nil
}

// Count returns the number of stored records
func (r *MemoryChromem) Count() int {
	col, err := r.collection()
	if err != nil {
		return 0
	}
	return col.Count()
}

// collection returns the backing collection. Reads and writes create it on
// demand so a fresh embedded store works without an explicit EnsureIndex.
func (r *MemoryChromem) collection() (*chromem.Collection, error) {
	r.mu.RLock()
	col := r.col
	r.mu.RUnlock()
	if col != nil {
		return col, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.col != nil {
		return r.col, nil
	}

	col, err := r.db.GetOrCreateCollection(r.index.Name, map[string]string{"metric": r.index.Metric}, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", r.index.Name, err)
	}
	r.col = col
	return col, nil
}
