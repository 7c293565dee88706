package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/pkg/retry"
	"github.com/futig/jarvis-backend/internal/telegram/render"
)

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	bot    BotAPI
	logger *zap.Logger
	retry  *retry.RetryConfig
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot BotAPI, logger *zap.Logger) *MessageSender {
	return &MessageSender{
		bot:    bot,
		logger: logger,
		retry:  retry.DefaultRetryConfig(),
	}
}

// Send sends a message to the specified chat
func (s *MessageSender) Send(chatID int64, text string) error {
	_, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		s.logger.Error("failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return err
	}
	return nil
}

// SendReply delivers a possibly long reply in as many messages as needed.
// Every part is retried since a lost part garbles the answer.
func (s *MessageSender) SendReply(ctx context.Context, chatID int64, replyTo int, text string) error {
	for i, part := range render.SplitMessage(text, render.MaxMessageLength) {
		msg := tgbotapi.NewMessage(chatID, part)
		if i == 0 && replyTo != 0 {
			msg.ReplyToMessageID = replyTo
		}

		err := retry.Do(ctx, s.retry, "send telegram message", func() error {
			_, err := s.bot.Send(msg)
			return err
		})
		if err != nil {
			s.logger.Error("failed to send reply",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
				zap.Int("part", i),
			)
			return err
		}
	}
	return nil
}
