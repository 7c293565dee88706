package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/api"
	chatapi "github.com/futig/jarvis-backend/internal/api/chat"
	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/integration/asr"
	"github.com/futig/jarvis-backend/internal/pkg/validator"
	"github.com/futig/jarvis-backend/internal/telegram"
	"github.com/futig/jarvis-backend/internal/telegram/bot"
	"github.com/futig/jarvis-backend/internal/telegram/handlers"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	core, err := BuildCore(ctx, cfg, logger, CoreOptions{EnsureIndex: true})
	if err != nil {
		return nil, err
	}

	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	chatHandler := chatapi.NewHandler(core.Chat, fileValidator, core.Metrics)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(chatHandler, core.Metrics, logger)
	logger.Info("HTTP router configured")

	// Generation can take a while; the chat route has its own timeout
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		core:   core,
		logger: logger,
	}, nil
}

// setupTranscriber returns nil when no speech recognition service is
// configured, which leaves voice messages disabled
func setupTranscriber(cfg *config.Config, logger *zap.Logger) handlers.Transcriber {
	switch {
	case cfg.EnableMocks:
		logger.Info("Using mock ASR connector")
		return asr.NewMockConnector()
	case cfg.ASRCfg.Url != "":
		logger.Info("Voice messages enabled", zap.String("asr_url", cfg.ASRCfg.Url))
		return asr.NewConnector(cfg.ASRCfg, logger)
	default:
		logger.Info("ASR_SERVICE_URL not set, voice messages disabled")
		return nil
	}
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *Core, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	core, err := BuildCore(ctx, cfg, logger, CoreOptions{EnsureIndex: true})
	if err != nil {
		return nil, nil, err
	}

	b, err := telegram.NewBot(&cfg.TelegramCfg, core.Chat, bot.Options{
		PersonaName:  cfg.ChatCfg.PersonaName,
		MaxFileSize:  cfg.FileUploadCfg.MaxFileSize,
		MaxVoiceSize: cfg.ASRCfg.MaxVoiceSize,
		Transcriber:  setupTranscriber(cfg, logger),
	}, logger)
	if err != nil {
		core.Close()
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return b, core, nil
}
