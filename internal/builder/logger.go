package builder

import (
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/pkg/logger"
)

func setupLogger(cfg *config.Config) (*zap.Logger, error) {
	development := cfg.Environment == "local" || cfg.Environment == "dev" || cfg.Environment == "development"
	return logger.New(cfg.LogLevel, development)
}

// logKeyStatus prints the redacted API keys. Missing keys do not stop the
// start; the component that needs one fails on first use.
func logKeyStatus(cfg *config.Config, log *zap.Logger) {
	status := cfg.KeyStatus()
	log.Info("API keys",
		zap.String("GEMINI_API_KEY", status["GEMINI_API_KEY"]),
		zap.String("ANTHROPIC_API_KEY", status["ANTHROPIC_API_KEY"]),
		zap.String("PINECONE_API_KEY", status["PINECONE_API_KEY"]),
		zap.String("UNIDOC_LICENSE_API_KEY", status["UNIDOC_LICENSE_API_KEY"]),
	)
}
