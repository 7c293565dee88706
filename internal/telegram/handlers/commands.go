package handlers

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/telegram/render"
)

// Bot commands
const (
	CommandStart  = "start"
	CommandHelp   = "help"
	CommandForget = "forget"
)

// CommandHandler answers slash commands
type CommandHandler struct {
	BaseHandler
	history History
	persona string
}

func NewCommandHandler(bot BotAPI, history History, persona string, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		BaseHandler: BaseHandler{messageSender: NewMessageSender(bot, logger)},
		history:     history,
		persona:     persona,
	}
}

func (h *CommandHandler) Handle(ctx context.Context, msg *Message) error {
	ctxzap.Debug(ctx, "handling command", zap.String("command", msg.Command))

	switch msg.Command {
	case CommandStart:
		h.history.Clear(msg.ChatID)
		h.sendMessage(msg.ChatID, fmt.Sprintf(render.MsgWelcome, h.persona))
	case CommandHelp:
		h.sendMessage(msg.ChatID, render.MsgHelp)
	case CommandForget:
		h.history.Clear(msg.ChatID)
		h.sendMessage(msg.ChatID, render.MsgForgotten)
	default:
		h.sendMessage(msg.ChatID, render.MsgUnknownCommand)
	}
	return nil
}
