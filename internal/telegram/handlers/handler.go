package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Text      string
	Command   string
	Document  *tgbotapi.Document
	Voice     *tgbotapi.Voice
}

// Handler processes one kind of Telegram message
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// NewMessage normalizes a Telegram message. Captions of documents are
// treated as the message text.
func NewMessage(m *tgbotapi.Message) *Message {
	msg := &Message{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
		Command:   m.Command(),
		Document:  m.Document,
		Voice:     m.Voice,
	}
	if m.From != nil {
		msg.UserID = m.From.ID
	}
	if msg.Text == "" {
		msg.Text = m.Caption
	}
	return msg
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	messageSender *MessageSender
}

// sendMessage is a convenience wrapper for messageSender.Send
func (h *BaseHandler) sendMessage(chatID int64, text string) {
	if h.messageSender != nil {
		h.messageSender.Send(chatID, text)
	}
}
