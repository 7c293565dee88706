package handlers

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/futig/jarvis-backend/internal/entity"
)

type fakeBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	actions int
	fileURL string
	sendErr error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetFileDirectURL(string) (string, error) {
	return f.fileURL, nil
}

func (f *fakeBot) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type fakeChat struct {
	turns  []*entity.ChatTurn
	result *entity.ChatResult
	err    error
}

func (f *fakeChat) Exchange(_ context.Context, turn *entity.ChatTurn) (*entity.ChatResult, error) {
	f.turns = append(f.turns, turn)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type memoryHistory struct {
	chats map[int64]string
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{chats: map[int64]string{}}
}

func (h *memoryHistory) Get(chatID int64) string { return h.chats[chatID] }

func (h *memoryHistory) Append(chatID int64, user, reply string) {
	h.chats[chatID] += "User: " + user + "\nAssistant: " + reply
}

func (h *memoryHistory) Clear(chatID int64) { delete(h.chats, chatID) }

type fakeTranscriber struct {
	audio []byte
	text  string
	err   error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	f.audio = audio
	return f.text, f.err
}
