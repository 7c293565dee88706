package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/jarvis-backend/internal/entity"
)

// ChatUsecase answers one chat turn
type ChatUsecase interface {
	Exchange(ctx context.Context, turn *entity.ChatTurn) (*entity.ChatResult, error)
}

// BotAPI is the part of *tgbotapi.BotAPI the handlers use
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// History keeps the recent conversation of a chat
type History interface {
	Get(chatID int64) string
	Append(chatID int64, user, reply string)
	Clear(chatID int64)
}

// Transcriber turns a voice recording into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}
