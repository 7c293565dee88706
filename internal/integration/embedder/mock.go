package embedder

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector - детерминированный эмбеддер для локального запуска и тестов.
// Одинаковый текст всегда даёт одинаковый вектор, похожесть при этом не
// отражает смысл текста.
type MockConnector struct {
	dimensions int
}

func NewMockConnector(dimensions int) *MockConnector {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockConnector{dimensions: dimensions}
}

// Embed - вектор из FNV-хеша текста
func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding text", zap.Int("length", len(text)))

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, m.dimensions)
	for i := range embedding {
		// LCG step, mapped to [-1, 1]
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding), nil
}

func (m *MockConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, _ := m.Embed(ctx, t)
		out = append(out, vec)
	}
	return out, nil
}

func (m *MockConnector) Dimensions() int {
	return m.dimensions
}
