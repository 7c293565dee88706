package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/pkg/logger"
	"github.com/futig/jarvis-backend/internal/telegram/render"
)

// ChatHandler routes plain messages, documents and voice messages to the
// exchange pipeline
type ChatHandler struct {
	BaseHandler
	bot         BotAPI
	usecase     ChatUsecase
	history     History
	downloader  *Downloader
	transcriber Transcriber
	logger      *zap.Logger
}

func NewChatHandler(
	bot BotAPI,
	usecase ChatUsecase,
	history History,
	downloader *Downloader,
	logger *zap.Logger,
) *ChatHandler {
	return &ChatHandler{
		BaseHandler: BaseHandler{messageSender: NewMessageSender(bot, logger)},
		bot:         bot,
		usecase:     usecase,
		history:     history,
		downloader:  downloader,
		logger:      logger,
	}
}

// WithTranscriber enables voice messages
func (h *ChatHandler) WithTranscriber(t Transcriber) *ChatHandler {
	h.transcriber = t
	return h
}

func (h *ChatHandler) Handle(ctx context.Context, msg *Message) error {
	ctx = logger.AddFields(ctx,
		zap.Int64("chat_id", msg.ChatID),
		zap.String("action", "TelegramChat"),
	)

	if msg.Voice != nil {
		if h.transcriber == nil {
			h.sendMessage(msg.ChatID, render.MsgVoiceDisabled)
			return nil
		}
		text, err := h.transcribe(ctx, msg)
		if err != nil {
			h.HandleError(ctx, msg.ChatID, err)
			return fmt.Errorf("transcribe voice: %w", err)
		}
		if text == "" {
			h.sendMessage(msg.ChatID, render.MsgVoiceEmpty)
			return nil
		}
		msg.Text = strings.TrimSpace(msg.Text + "\n" + text)
	}

	turn := &entity.ChatTurn{
		UserMessage:    msg.Text,
		HistorySnippet: h.history.Get(msg.ChatID),
	}

	if msg.Document != nil {
		file, err := h.downloader.Download(ctx, msg.Document)
		if err != nil {
			h.HandleError(ctx, msg.ChatID, err)
			return fmt.Errorf("download document: %w", err)
		}
		turn.Files = []entity.FileData{file}
	}

	typing := NewTypingNotifier(h.bot, msg.ChatID, h.logger)
	typing.Start(ctx)
	result, err := h.usecase.Exchange(ctx, turn)
	typing.Stop()

	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return err
	}

	if err := h.messageSender.SendReply(ctx, msg.ChatID, msg.MessageID, result.Reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	if !result.ShortCircuited {
		h.history.Append(msg.ChatID, historyText(msg), result.Reply)
	}

	ctxzap.Debug(ctx, "telegram chat turn answered",
		zap.Bool("degraded", result.Degraded),
		zap.Int("context_matches", result.ContextMatches),
	)
	return nil
}

func (h *ChatHandler) transcribe(ctx context.Context, msg *Message) (string, error) {
	audio, err := h.downloader.DownloadVoice(ctx, msg.Voice)
	if err != nil {
		return "", err
	}

	typing := NewTypingNotifier(h.bot, msg.ChatID, h.logger)
	typing.Start(ctx)
	defer typing.Stop()

	text, err := h.transcriber.Transcribe(ctx, audio, voiceFilename)
	if err != nil {
		return "", err
	}
	ctxzap.Debug(ctx, "voice message transcribed", zap.Int("duration", msg.Voice.Duration))
	return strings.TrimSpace(text), nil
}

func historyText(msg *Message) string {
	text := strings.TrimSpace(msg.Text)
	if msg.Document == nil {
		return text
	}
	attached := "[Attached: " + msg.Document.FileName + "]"
	if text == "" {
		return attached
	}
	return text + " " + attached
}
