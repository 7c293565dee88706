package pinecone

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/integration/common"
	pkghttp "github.com/futig/jarvis-backend/pkg/http"
)

// DefaultControlPlaneURL is the Pinecone control plane used when
// PINECONE_SERVICE_URL is not set
const DefaultControlPlaneURL = "https://api.pinecone.io"

const apiVersionHeader = "X-Pinecone-API-Version"

// Connector talks to one Pinecone serverless index. Index management goes to
// the control plane; queries and upserts go to the index host, which is
// resolved once and cached.
type Connector struct {
	config    config.PineconeConfig
	index     entity.IndexSpec
	connector *pkghttp.Connector
	hosts     *cache.Cache
	logger    *zap.Logger
}

func NewConnector(
	cfg config.PineconeConfig,
	index entity.IndexSpec,
	apiKey string,
	logger *zap.Logger,
) *Connector {
	baseURL := cfg.Url
	if baseURL == "" {
		baseURL = DefaultControlPlaneURL
	}

	return &Connector{
		config:    cfg,
		index:     index,
		connector: common.NewConnectorWithURL(cfg.HTTPClientConfig, baseURL, logger, pkghttp.WithHeaderAuth("Api-Key", apiKey)),
		hosts:     cache.New(cfg.HostCacheTTL, 2*cfg.HostCacheTTL),
		logger:    logger,
	}
}

// DescribeIndex returns the index description or entity.ErrIndexNotFound
// GET /indexes/{name}
func (c *Connector) DescribeIndex(ctx context.Context) (*entity.PineconeIndexDescription, error) {
	var desc entity.PineconeIndexDescription
	err := c.connector.DoRequest(ctx, http.MethodGet, "/indexes/"+url.PathEscape(c.index.Name), nil, &desc, c.versionHeader())
	if err != nil {
		if pkghttp.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", entity.ErrIndexNotFound, c.index.Name)
		}
		return nil, fmt.Errorf("describe index: %w", err)
	}
	return &desc, nil
}

// EnsureIndex creates the index when absent and waits until it is ready
// POST /indexes
func (c *Connector) EnsureIndex(ctx context.Context) error {
	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("index", c.index.Name)))

	desc, err := c.DescribeIndex(ctx)
	switch {
	case err == nil:
		if desc.Dimension != 0 && desc.Dimension != c.index.Dimension {
			return fmt.Errorf("%w: index %s has dimension %d, want %d",
				entity.ErrDimensionMismatch, c.index.Name, desc.Dimension, c.index.Dimension)
		}
		if desc.Status.Ready {
			c.rememberHost(desc.Host)
			ctxzap.Info(ctx, "memory index already exists")
			return nil
		}
	case errors.Is(err, entity.ErrIndexNotFound):
		ctxzap.Info(ctx, "creating memory index",
			zap.Int("dimension", c.index.Dimension),
			zap.String("metric", c.index.Metric),
		)

		req := &entity.PineconeCreateIndexRequest{
			Name:      c.index.Name,
			Dimension: c.index.Dimension,
			Metric:    c.index.Metric,
			Spec: entity.PineconeIndexSpec{
				Serverless: &entity.PineconeServerlessSpec{Cloud: c.index.Cloud, Region: c.index.Region},
			},
		}
		err := c.connector.DoRequest(ctx, http.MethodPost, "/indexes", req, nil, c.versionHeader())
		// A concurrent creator wins with 409, which is as good as success
		if err != nil && !pkghttp.IsStatus(err, http.StatusConflict) {
			return fmt.Errorf("create index: %w", err)
		}
	default:
		return err
	}

	return c.waitReady(ctx)
}

// DeleteIndex drops the index. Deleting a missing index is not an error.
// DELETE /indexes/{name}
func (c *Connector) DeleteIndex(ctx context.Context) error {
	err := c.connector.DoRequest(ctx, http.MethodDelete, "/indexes/"+url.PathEscape(c.index.Name), nil, nil, c.versionHeader())
	c.hosts.Delete(c.index.Name)

	if err != nil {
		if pkghttp.IsStatus(err, http.StatusNotFound) {
			ctxzap.Info(ctx, "memory index already absent", zap.String("index", c.index.Name))
			return nil
		}
		return fmt.Errorf("delete index: %w", err)
	}

	ctxzap.Info(ctx, "memory index deleted", zap.String("index", c.index.Name))
	return nil
}

// Query returns the topK nearest records with their metadata
// POST https://{host}/query
func (c *Connector) Query(ctx context.Context, vector []float32, topK int) ([]entity.MemoryMatch, error) {
	host, err := c.host(ctx)
	if err != nil {
		return nil, err
	}

	req := &entity.PineconeQueryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       c.config.Namespace,
	}

	var resp entity.PineconeQueryResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, "", req, &resp, pkghttp.WithURL(host+"/query"), c.versionHeader()); err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	matches := make([]entity.MemoryMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, entity.MemoryMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: stringMetadata(m.Metadata),
		})
	}

	ctxzap.Debug(ctx, "memory query finished", zap.Int("matches", len(matches)))
	return matches, nil
}

// Upsert inserts or replaces records by id
// POST https://{host}/vectors/upsert
func (c *Connector) Upsert(ctx context.Context, records []entity.MemoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	host, err := c.host(ctx)
	if err != nil {
		return err
	}

	req := &entity.PineconeUpsertRequest{
		Vectors:   make([]entity.PineconeVector, 0, len(records)),
		Namespace: c.config.Namespace,
	}
	for _, r := range records {
		req.Vectors = append(req.Vectors, entity.PineconeVector{ID: r.ID, Values: r.Vector, Metadata: r.Metadata})
	}

	var resp entity.PineconeUpsertResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, "", req, &resp, pkghttp.WithURL(host+"/vectors/upsert"), c.versionHeader()); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}

	ctxzap.Debug(ctx, "vectors upserted", zap.Int("count", resp.UpsertedCount))
	return nil
}

func (c *Connector) waitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(c.config.ReadyPollDelay)
	defer ticker.Stop()

	for {
		desc, err := c.DescribeIndex(ctx)
		if err != nil && !errors.Is(err, entity.ErrIndexNotFound) {
			return err
		}
		if err == nil && desc.Status.Ready {
			c.rememberHost(desc.Host)
			ctxzap.Info(ctx, "memory index is ready", zap.String("host", desc.Host))
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", entity.ErrIndexNotReady, c.index.Name)
		case <-ticker.C:
		}
	}
}

// host resolves the data plane URL of the index
func (c *Connector) host(ctx context.Context) (string, error) {
	if h, ok := c.hosts.Get(c.index.Name); ok {
		return h.(string), nil
	}

	desc, err := c.DescribeIndex(ctx)
	if err != nil {
		return "", err
	}
	if desc.Host == "" {
		return "", fmt.Errorf("%w: %s has no host yet", entity.ErrIndexNotReady, c.index.Name)
	}

	return c.rememberHost(desc.Host), nil
}

func (c *Connector) rememberHost(host string) string {
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	c.hosts.Set(c.index.Name, host, cache.DefaultExpiration)
	return host
}

func (c *Connector) versionHeader() pkghttp.RequestOpt {
	return pkghttp.WithHeader(apiVersionHeader, c.config.APIVersion)
}

// stringMetadata flattens Pinecone metadata values to strings
func stringMetadata(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}

	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
