package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/repository"
)

type failingManager struct{ err error }

func (f failingManager) EnsureIndex(context.Context) error { return f.err }
func (f failingManager) DeleteIndex(context.Context) error { return f.err }

func TestIndexUsecase_ChromemLifecycle(t *testing.T) {
	spec := entity.IndexSpec{Name: "jarvis-memory", Dimension: 2, Metric: "cosine"}
	store, err := repository.NewMemoryChromem("", spec)
	require.NoError(t, err)

	uc := NewUsecase(store, spec)
	ctx := context.Background()

	require.NoError(t, uc.Ensure(ctx))
	require.NoError(t, uc.Ensure(ctx))

	require.NoError(t, store.Upsert(ctx, []entity.MemoryRecord{{ID: "a", Vector: []float32{1, 0}, Metadata: map[string]string{"text": "x"}}}))
	assert.Equal(t, 1, store.Count())

	require.NoError(t, uc.Delete(ctx))
	assert.Equal(t, 0, store.Count())
}

func TestIndexUsecase_WrapsErrors(t *testing.T) {
	boom := errors.New("unauthorized")
	uc := NewUsecase(failingManager{err: boom}, entity.IndexSpec{Name: "jarvis-memory"})

	err := uc.Ensure(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "jarvis-memory")

	assert.ErrorIs(t, uc.Delete(context.Background()), boom)
}
