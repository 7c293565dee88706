//go:build !onnx

package embedder

import (
	"context"
	"errors"

	"github.com/futig/jarvis-backend/internal/config"
	"go.uber.org/zap"
)

// ErrONNXUnavailable is returned when the binary was built without the onnx tag
var ErrONNXUnavailable = errors.New("onnx embedder is not available: rebuild with -tags onnx")

type ONNXEmbedder struct{}

func NewONNX(config.EmbedderConfig, *zap.Logger) (*ONNXEmbedder, error) {
	return nil, ErrONNXUnavailable
}

func (e *ONNXEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrONNXUnavailable
}

func (e *ONNXEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, ErrONNXUnavailable
}

func (e *ONNXEmbedder) Dimensions() int { return 0 }

func (e *ONNXEmbedder) Close() error { return nil }
