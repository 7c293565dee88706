package middleware

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// LoggingMiddleware logs all incoming updates
type LoggingMiddleware struct {
	logger *zap.Logger
}

func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger,
	}
}

// Handle logs the update before and after the next handler
func (m *LoggingMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	start := time.Now()
	userID, chatID := updateIDs(update)

	m.logger.Info("telegram update received",
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
		zap.String("type", updateType(update)),
		zap.Int("update_id", update.UpdateID),
	)

	next(update)

	m.logger.Info("telegram update processed",
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
		zap.Duration("duration", time.Since(start)),
	)
}

func updateType(update tgbotapi.Update) string {
	m := update.Message
	switch {
	case m == nil:
		return "other"
	case m.IsCommand():
		return "command"
	case m.Document != nil:
		return "document"
	case m.Text != "":
		return "text"
	default:
		return "unsupported"
	}
}

// updateIDs returns the sender and chat of an update, zero when absent
func updateIDs(update tgbotapi.Update) (userID, chatID int64) {
	if update.Message == nil {
		return 0, 0
	}
	if update.Message.From != nil {
		userID = update.Message.From.ID
	}
	if update.Message.Chat != nil {
		chatID = update.Message.Chat.ID
	}
	return userID, chatID
}
