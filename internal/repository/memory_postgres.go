package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/entity"
)

const (
	queryMemorySQL = `
SELECT id, text, metadata, 1 - (embedding <=> $1) AS score
FROM memory_records
ORDER BY embedding <=> $1
LIMIT $2`

	upsertMemorySQL = `
INSERT INTO memory_records (id, embedding, text, metadata, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (id) DO UPDATE
SET embedding = EXCLUDED.embedding,
    text = EXCLUDED.text,
    metadata = EXCLUDED.metadata,
    updated_at = EXCLUDED.updated_at`
)

// MemoryPostgres keeps the memory index in a pgvector table. The index
// lifecycle maps to schema migrations.
type MemoryPostgres struct {
	db          *pgxpool.Pool
	databaseURL string
	index       entity.IndexSpec
}

func NewMemoryPostgres(db *pgxpool.Pool, databaseURL string, index entity.IndexSpec) *MemoryPostgres {
	return &MemoryPostgres{
		db:          db,
		databaseURL: databaseURL,
		index:       index,
	}
}

func (r *MemoryPostgres) EnsureIndex(ctx context.Context) error {
	if err := RunMigrations(r.databaseURL); err != nil {
		return err
	}
	ctxzap.Info(ctx, "memory table ready", zap.String("index", r.index.Name))
	return nil
}

func (r *MemoryPostgres) DeleteIndex(ctx context.Context) error {
	if err := DropMigrations(r.databaseURL); err != nil {
		return err
	}
	ctxzap.Info(ctx, "memory table dropped", zap.String("index", r.index.Name))
	return nil
}

func (r *MemoryPostgres) Query(ctx context.Context, vector []float32, topK int) ([]entity.MemoryMatch, error) {
	if len(vector) != r.index.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index %d", entity.ErrDimensionMismatch, len(vector), r.index.Dimension)
	}

	rows, err := r.db.Query(ctx, queryMemorySQL, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("query memory: %w", err)
	}
	defer rows.Close()

	matches := make([]entity.MemoryMatch, 0, topK)
	for rows.Next() {
		var (
			id, text string
			rawMeta  []byte
			score    float64
		)
		if err := rows.Scan(&id, &text, &rawMeta, &score); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}

		meta, err := decodeMetadata(text, rawMeta)
		if err != nil {
			return nil, fmt.Errorf("memory %s: %w", id, err)
		}

		matches = append(matches, entity.MemoryMatch{ID: id, Score: float32(score), Metadata: meta})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory rows: %w", err)
	}

	return matches, nil
}

func (r *MemoryPostgres) Upsert(ctx context.Context, records []entity.MemoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, rec := range records {
		if len(rec.Vector) != r.index.Dimension {
			return fmt.Errorf("%w: record %s has %d dimensions, index %d",
				entity.ErrDimensionMismatch, rec.ID, len(rec.Vector), r.index.Dimension)
		}

		meta, err := encodeMetadata(rec.Metadata)
		if err != nil {
			return fmt.Errorf("record %s: %w", rec.ID, err)
		}

		batch.Queue(upsertMemorySQL, rec.ID, pgvector.NewVector(rec.Vector), rec.Text(), meta, now)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert memory: %w", err)
	}
	return nil
}
