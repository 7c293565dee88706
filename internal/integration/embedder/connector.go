package embedder

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/integration/common"
	pkghttp "github.com/futig/jarvis-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector embeds text through a text-embeddings-inference compatible
// service serving all-MiniLM-L6-v2.
type Connector struct {
	config    config.EmbedderConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.EmbedderConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Embed encodes a single text
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch encodes texts in one call, preserving order
// POST {embed_endpoint} {"inputs": [...], "normalize": true}
func (c *Connector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctxzap.Debug(ctx, "embedding texts", zap.Int("count", len(texts)))

	req := &entity.EmbedRequest{
		Inputs:    texts,
		Normalize: true,
		Truncate:  true,
	}

	var resp [][]float32
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.EmbedEndpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}

	if len(resp) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(resp), len(texts))
	}

	for i, vec := range resp {
		if len(vec) != c.config.Dimension {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				entity.ErrDimensionMismatch, i, len(vec), c.config.Dimension)
		}
	}

	return resp, nil
}

// Dimensions returns the embedding size
func (c *Connector) Dimensions() int {
	return c.config.Dimension
}
