package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/telegram/handlers"
	"github.com/futig/jarvis-backend/internal/telegram/history"
	"github.com/futig/jarvis-backend/internal/telegram/middleware"
	"github.com/futig/jarvis-backend/internal/telegram/render"
)

// API is the part of *tgbotapi.BotAPI the bot uses
type API interface {
	handlers.BotAPI
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options configure what the bot says and accepts
type Options struct {
	PersonaName  string
	MaxFileSize  int64
	MaxVoiceSize int64
	// Transcriber enables voice messages when set
	Transcriber handlers.Transcriber
}

// Bot represents the Telegram bot
type Bot struct {
	api         API
	cfg         *config.TelegramConfig
	commands    handlers.Handler
	chat        handlers.Handler
	sender      *handlers.MessageSender
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// New wires the handlers and middleware around api
func New(
	cfg *config.TelegramConfig,
	api API,
	chatUC handlers.ChatUsecase,
	opts Options,
	logger *zap.Logger,
) *Bot {
	hist := history.New(cfg.HistoryTTL, cfg.HistoryMaxChars)
	downloader := handlers.NewDownloader(api, opts.MaxFileSize)
	if opts.MaxVoiceSize > 0 {
		downloader.WithVoiceLimit(opts.MaxVoiceSize)
	}
	chat := handlers.NewChatHandler(api, chatUC, hist, downloader, logger)
	if opts.Transcriber != nil {
		chat.WithTranscriber(opts.Transcriber)
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		commands:    handlers.NewCommandHandler(api, hist, opts.PersonaName, logger),
		chat:        chat,
		sender:      handlers.NewMessageSender(api, logger),
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(logger, api),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger, api),
		stopChan:    make(chan struct{}),
	}
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops receiving updates and waits for in-flight handlers
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware runs rate limiting, logging and recovery
// around the update handler
func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(ctx, u3)
			})
		})
	})
}

// handleUpdate routes a message to the command or chat handler
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}

	msg := handlers.NewMessage(message)
	ctx = ctxzap.ToContext(ctx, b.logger.With(
		zap.Int64("user_id", msg.UserID),
		zap.Int("update_id", update.UpdateID),
	))

	var handler handlers.Handler
	switch {
	case message.IsCommand():
		handler = b.commands
	case message.Text != "" || message.Document != nil || message.Voice != nil:
		handler = b.chat
	default:
		b.sender.Send(msg.ChatID, render.MsgUnsupported)
		return
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Debug(ctx, "handler finished with error", zap.Error(err))
	}
}
