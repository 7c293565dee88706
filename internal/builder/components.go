package builder

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/integration/embedder"
	"github.com/futig/jarvis-backend/internal/integration/llm"
	"github.com/futig/jarvis-backend/internal/integration/pinecone"
	"github.com/futig/jarvis-backend/internal/observability"
	"github.com/futig/jarvis-backend/internal/pkg/chunker"
	"github.com/futig/jarvis-backend/internal/pkg/extractor"
	"github.com/futig/jarvis-backend/internal/repository"
	"github.com/futig/jarvis-backend/internal/usecase/chat"
	"github.com/futig/jarvis-backend/internal/usecase/index"
	"github.com/futig/jarvis-backend/internal/usecase/ingest"
)

// Embedder encodes single texts for chat and batches for ingestion
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces completions and owns a client to release
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	io.Closer
}

// Core holds the clients and use cases shared by the server, the bot and
// the admin CLI. Everything is constructed once and read-only afterwards.
type Core struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Chat    *chat.ChatUsecase
	Index   *index.IndexUsecase
	Ingest  *ingest.IngestUsecase

	embedder Embedder
	store    repository.MemoryRepository
	db       *pgxpool.Pool
	closers  []io.Closer
}

// CoreOptions tune what BuildCore does beyond wiring
type CoreOptions struct {
	// EnsureIndex creates the hosted index at build time when it is missing
	EnsureIndex bool
	// Registry receives the metrics; nil means the default registry
	Registry *prometheus.Registry
}

// BuildCore wires the memory store, embedder and generator selected by cfg
// into the chat, index and ingest use cases
func BuildCore(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts CoreOptions) (*Core, error) {
	core := &Core{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(cfg.MetricsNamespace, opts.Registry),
	}

	logKeyStatus(cfg, logger)
	activateDOCX(cfg.UnidocLicenseKey, logger)

	indexSpec := entity.IndexSpec{
		Name:      cfg.VectorStoreCfg.IndexName,
		Dimension: cfg.VectorStoreCfg.Dimension,
		Metric:    cfg.VectorStoreCfg.Metric,
		Cloud:     cfg.PineconeCfg.Cloud,
		Region:    cfg.PineconeCfg.Region,
	}

	store, err := core.setupMemory(ctx, indexSpec)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("setup memory store: %w", err)
	}

	emb, err := core.setupEmbedder()
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("setup embedder: %w", err)
	}

	core.embedder, core.store = emb, store

	gen := core.setupGenerator(ctx)
	core.closers = append(core.closers, gen)

	core.Index = index.NewUsecase(store, indexSpec)
	if opts.EnsureIndex && cfg.VectorStoreCfg.Backend == config.VectorStorePinecone && !cfg.EnableMocks {
		if err := core.Index.Ensure(ctx); err != nil {
			core.Close()
			return nil, fmt.Errorf("bootstrap memory index: %w", err)
		}
	}

	core.Chat = chat.NewUsecase(
		emb,
		store,
		gen,
		extractor.New(),
		cfg.ChatCfg,
		chat.WithObserver(core.Metrics),
		chat.WithRetry(&cfg.EmbedderCfg.Retry, &cfg.VectorStoreCfg.Retry),
	)
	core.Ingest = ingest.NewUsecase(emb, store, chunker.New(), &cfg.EmbedderCfg.Retry)

	logger.Info("Use cases initialized",
		zap.String("vector_store", cfg.VectorStoreCfg.Backend),
		zap.String("embedder", cfg.EmbedderCfg.Provider),
		zap.String("generator", cfg.GeneratorCfg.Provider),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	return core, nil
}

// IngestWithChunker returns an ingest use case sharing the core's clients
// but splitting documents with ch
func (c *Core) IngestWithChunker(ch *chunker.Chunker) *ingest.IngestUsecase {
	return ingest.NewUsecase(c.embedder, c.store, ch, &c.Config.EmbedderCfg.Retry)
}

// Close releases clients and the database pool
func (c *Core) Close() {
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.Logger.Warn("failed to close client", zap.Error(err))
		}
	}
	if c.db != nil {
		c.Logger.Info("Closing database connections")
		c.db.Close()
	}
}

// activateDOCX registers the UniDoc key. Without one the process still runs
// and .docx attachments fall back to the unreadable-file placeholder.
func activateDOCX(key string, logger *zap.Logger) {
	if key == "" {
		logger.Warn("UNIDOC_LICENSE_API_KEY is not set, DOCX attachments will not be extracted")
		return
	}
	if err := extractor.ActivateDOCX(key); err != nil {
		logger.Error("Failed to activate DOCX extraction", zap.Error(err))
		return
	}
	logger.Info("DOCX extraction enabled")
}

func (c *Core) setupMemory(ctx context.Context, spec entity.IndexSpec) (repository.MemoryRepository, error) {
	cfg := c.Config
	if cfg.EnableMocks {
		c.Logger.Info("Using in-memory chromem store (mock mode)")
		return repository.NewMemoryChromem("", spec)
	}

	switch cfg.VectorStoreCfg.Backend {
	case config.VectorStorePinecone:
		return pinecone.NewConnector(cfg.PineconeCfg, spec, cfg.PineconeAPIKey, c.Logger), nil
	case config.VectorStoreChromem:
		return repository.NewMemoryChromem(cfg.VectorStoreCfg.ChromemPath, spec)
	case config.VectorStorePostgres:
		db, err := setupDatabase(ctx, cfg, c.Logger)
		if err != nil {
			return nil, err
		}
		c.db = db
		return repository.NewMemoryPostgres(db, cfg.DatabaseURL, spec), nil
	default:
		return nil, fmt.Errorf("unknown vector store backend %q", cfg.VectorStoreCfg.Backend)
	}
}

func (c *Core) setupEmbedder() (Embedder, error) {
	cfg := c.Config
	if cfg.EnableMocks {
		c.Logger.Info("Using mock embedder")
		return embedder.NewMockConnector(cfg.EmbedderCfg.Dimension), nil
	}

	switch cfg.EmbedderCfg.Provider {
	case config.EmbedderONNX:
		onnx, err := embedder.NewONNX(cfg.EmbedderCfg, c.Logger)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, onnx)
		return onnx, nil
	default:
		return embedder.NewConnector(cfg.EmbedderCfg, c.Logger), nil
	}
}

func (c *Core) setupGenerator(ctx context.Context) Generator {
	cfg := c.Config
	if cfg.EnableMocks {
		c.Logger.Info("Using mock generator")
		return llm.NewMockGenerator(cfg.ChatCfg.PersonaName)
	}

	switch cfg.GeneratorCfg.Provider {
	case config.GeneratorAnthropic:
		return llm.NewAnthropic(cfg.GeneratorCfg, cfg.AnthropicAPIKey)
	default:
		return llm.NewGemini(ctx, cfg.GeneratorCfg, cfg.GeminiAPIKey, c.Logger)
	}
}
