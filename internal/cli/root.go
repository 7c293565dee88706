package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/futig/jarvis-backend/internal/builder"
	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/pkg/logger"
	"github.com/futig/jarvis-backend/internal/usecase/ingest"
)

// IndexService manages the memory index
type IndexService interface {
	Ensure(ctx context.Context) error
	Delete(ctx context.Context) error
	Spec() entity.IndexSpec
}

// IngestService loads local documents into memory
type IngestService interface {
	IngestDir(ctx context.Context, dir string) ([]ingest.FileReport, error)
}

// ChatService answers one chat turn
type ChatService interface {
	Exchange(ctx context.Context, turn *entity.ChatTurn) (*entity.ChatResult, error)
}

// Services are built lazily from configuration unless injected
var (
	indexService  IndexService
	ingestService IngestService
	chatService   ChatService

	core    *builder.Core
	envName string
)

var rootCmd = &cobra.Command{
	Use:   "jarvisctl",
	Short: "Administer the Jarvis memory",
	Long: `jarvisctl manages the vector index behind Jarvis, bulk loads documents
into its memory and sends one-off chat messages through the full pipeline.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "local", "Environment whose .env file is loaded (local, prod, or custom)")
}

// Execute runs the command line
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// SetServices injects services instead of building them from configuration
func SetServices(idx IndexService, ing IngestService, ch ChatService) {
	indexService = idx
	ingestService = ing
	chatService = ch
}

// ensureServices builds the core on first use
func ensureServices(ctx context.Context) error {
	if indexService != nil && ingestService != nil && chatService != nil {
		return nil
	}

	cfg, err := config.Load(envName)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, true)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	c, err := builder.BuildCore(ctx, cfg, log, builder.CoreOptions{})
	if err != nil {
		return err
	}
	core = c

	if indexService == nil {
		indexService = c.Index
	}
	if ingestService == nil {
		ingestService = c.Ingest
	}
	if chatService == nil {
		chatService = c.Chat
	}
	return nil
}

func closeServices() {
	if core == nil {
		return
	}
	core.Close()
	_ = core.Logger.Sync()
	core = nil
}

var errAborted = errors.New("aborted")
