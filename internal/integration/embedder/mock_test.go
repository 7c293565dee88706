package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockConnector_Deterministic(t *testing.T) {
	m := NewMockConnector(384)
	ctx := context.Background()

	a1, err := m.Embed(ctx, "hello jarvis")
	require.NoError(t, err)
	a2, _ := m.Embed(ctx, "hello jarvis")
	b, _ := m.Embed(ctx, "goodbye jarvis")

	assert.Len(t, a1, 384)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
}

func TestMockConnector_UnitNorm(t *testing.T) {
	vec, _ := NewMockConnector(384).Embed(context.Background(), "norm me")

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestMockConnector_DefaultDimensions(t *testing.T) {
	assert.Equal(t, 384, NewMockConnector(0).Dimensions())
}

func TestMockConnector_EmbedBatch(t *testing.T) {
	m := NewMockConnector(16)

	vecs, err := m.EmbedBatch(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	x, _ := m.Embed(context.Background(), "x")
	assert.Equal(t, x, vecs[0])
}
