package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/pkg/chunker"
	"github.com/futig/jarvis-backend/internal/pkg/logger"
	"github.com/futig/jarvis-backend/internal/pkg/retry"
)

// DefaultBatchSize bounds the chunks embedded and upserted in one call
const DefaultBatchSize = 32

// FileReport describes how one file was ingested
type FileReport struct {
	Path   string
	Chunks int
}

// IngestUsecase loads local text files into the memory index. It is an
// offline path and never runs inside a chat request.
type IngestUsecase struct {
	embedder  Embedder
	store     MemoryStore
	chunker   *chunker.Chunker
	retry     *retry.RetryConfig
	batchSize int
}

func NewUsecase(embedder Embedder, store MemoryStore, ch *chunker.Chunker, retryCfg *retry.RetryConfig) *IngestUsecase {
	if ch == nil {
		ch = chunker.New()
	}
	return &IngestUsecase{
		embedder:  embedder,
		store:     store,
		chunker:   ch,
		retry:     retryCfg,
		batchSize: DefaultBatchSize,
	}
}

// IngestDir ingests every .txt file directly inside dir, in name order
func (uc *IngestUsecase) IngestDir(ctx context.Context, dir string) ([]FileReport, error) {
	ctx = logger.WithAction(ctx, "ingest_dir")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	reports := make([]FileReport, 0, len(entries))
	for _, e := range entries {
		if !isTextFile(e) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		n, err := uc.IngestFile(ctx, p)
		if err != nil {
			return reports, err
		}
		reports = append(reports, FileReport{Path: p, Chunks: n})
	}

	ctxzap.Info(ctx, "directory ingested", zap.String("dir", dir), zap.Int("files", len(reports)))
	return reports, nil
}

// IngestFile chunks one file and upserts every chunk. Chunk ids are
// "<basename>_<index>", so re-ingesting a file replaces its chunks.
func (uc *IngestUsecase) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	base := filepath.Base(path)
	chunks := uc.chunker.Split(string(data))
	if len(chunks) == 0 {
		ctxzap.Info(ctx, "skipping empty file", zap.String("file", base))
		return 0, nil
	}

	for start := 0; start < len(chunks); start += uc.batchSize {
		end := min(start+uc.batchSize, len(chunks))
		if err := uc.upsertBatch(ctx, base, start, chunks[start:end]); err != nil {
			return 0, fmt.Errorf("ingest %s: %w", base, err)
		}
	}

	ctxzap.Info(ctx, "file ingested", zap.String("file", base), zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

func (uc *IngestUsecase) upsertBatch(ctx context.Context, source string, offset int, chunks []string) error {
	vectors, err := retry.DoWithData(ctx, uc.retry, "embed chunks", func() ([][]float32, error) {
		return uc.embedder.EmbedBatch(ctx, chunks)
	})
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	records := make([]entity.MemoryRecord, 0, len(chunks))
	for i, text := range chunks {
		idx := strconv.Itoa(offset + i)
		records = append(records, entity.MemoryRecord{
			ID:     source + "_" + idx,
			Vector: vectors[i],
			Metadata: map[string]string{
				entity.MetadataSource: source,
				entity.MetadataChunk:  idx,
				entity.MetadataText:   text,
				entity.MetadataKind:   entity.MemoryKindDocument,
			},
		})
	}

	return retry.Do(ctx, uc.retry, "upsert chunks", func() error {
		return uc.store.Upsert(ctx, records)
	})
}

func isTextFile(d fs.DirEntry) bool {
	return !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".txt")
}
