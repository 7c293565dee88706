package index

import (
	"context"
	"fmt"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/pkg/logger"
)

// Manager is implemented by every memory backend
type Manager interface {
	EnsureIndex(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
}

// IndexUsecase runs the administrative index lifecycle. Both operations are
// idempotent and never run on the request path.
type IndexUsecase struct {
	manager Manager
	spec    entity.IndexSpec
}

func NewUsecase(manager Manager, spec entity.IndexSpec) *IndexUsecase {
	return &IndexUsecase{manager: manager, spec: spec}
}

// Spec returns the index the usecase manages
func (uc *IndexUsecase) Spec() entity.IndexSpec {
	return uc.spec
}

// Ensure creates the index if it is absent and waits until it accepts traffic
func (uc *IndexUsecase) Ensure(ctx context.Context) error {
	ctx = logger.WithAction(ctx, "index_ensure")
	start := time.Now()

	if err := uc.manager.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index %s: %w", uc.spec.Name, err)
	}

	ctxzap.Info(ctx, "memory index ensured",
		zap.String("index", uc.spec.Name),
		zap.Int("dimension", uc.spec.Dimension),
		zap.String("metric", uc.spec.Metric),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Delete drops the index with every stored record
func (uc *IndexUsecase) Delete(ctx context.Context) error {
	ctx = logger.WithAction(ctx, "index_delete")

	if err := uc.manager.DeleteIndex(ctx); err != nil {
		return fmt.Errorf("delete index %s: %w", uc.spec.Name, err)
	}

	ctxzap.Info(ctx, "memory index deleted", zap.String("index", uc.spec.Name))
	return nil
}
