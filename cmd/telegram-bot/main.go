package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/builder"
)

func main() {
	if err := run(); err != nil {
		log.Fatal("telegram bot: ", err)
	}
}

func run() error {
	bot, core, err := builder.BuildTelegramBot()
	if err != nil {
		return err
	}
	defer core.Close()

	logger := core.Logger
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutdown requested, waiting for in-flight messages")

	if err := bot.Stop(); err != nil {
		logger.Error("telegram bot did not stop cleanly", zap.Error(err))
		return err
	}

	logger.Info("telegram bot stopped gracefully")
	return nil
}
