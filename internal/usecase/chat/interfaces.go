package chat

import (
	"context"
	"time"

	"github.com/futig/jarvis-backend/internal/entity"
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type MemoryStore interface {
	Query(ctx context.Context, vector []float32, topK int) ([]entity.MemoryMatch, error)
	Upsert(ctx context.Context, records []entity.MemoryRecord) error
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type FileExtractor interface {
	ExtractAll(ctx context.Context, files []entity.FileData) []entity.Attachment
}

// Observer receives pipeline measurements. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveExchange(outcome string)
	ObserveStage(stage string, d time.Duration)
	ObserveGenerationError()
}

// Exchange outcomes reported to the Observer
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)

// Pipeline stages reported to the Observer
const (
	StageExtract  = "extract"
	StageEmbed    = "embed"
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
	StagePersist  = "persist"
)

type noopObserver struct{}

func (noopObserver) ObserveExchange(string)             {}
func (noopObserver) ObserveStage(string, time.Duration) {}
func (noopObserver) ObserveGenerationError()            {}
