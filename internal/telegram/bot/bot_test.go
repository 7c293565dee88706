package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/telegram/render"
)

type fakeAPI struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    map[int64][]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 10), sent: map[int64][]string{}}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent[msg.ChatID] = append(f.sent[msg.ChatID], msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(string) (string, error) { return "", nil }

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) messages(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent[chatID]...)
}

type echoChat struct{}

func (echoChat) Exchange(_ context.Context, turn *entity.ChatTurn) (*entity.ChatResult, error) {
	return &entity.ChatResult{Reply: "echo: " + turn.UserMessage}, nil
}

func testConfig() *config.TelegramConfig {
	return &config.TelegramConfig{
		UpdateTimeout:      1,
		RateLimitPerMinute: 600,
		RateLimitBurst:     10,
		ShutdownTimeout:    1,
		HistoryTTL:         time.Minute,
		HistoryMaxChars:    1000,
	}
}

func message(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: chatID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return tgbotapi.Update{Message: msg}
}

func TestBot_RoutesUpdates(t *testing.T) {
	api := newFakeAPI()
	b := New(testConfig(), api, echoChat{}, Options{PersonaName: "Jarvis", MaxFileSize: 1024}, zap.NewNop())

	require.NoError(t, b.Start(context.Background()))

	api.updates <- message(1, "hello")
	api.updates <- message(2, "/help")
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		From:    &tgbotapi.User{ID: 3},
		Chat:    &tgbotapi.Chat{ID: 3},
		Sticker: &tgbotapi.Sticker{FileID: "s"},
	}}
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		From:  &tgbotapi.User{ID: 4},
		Chat:  &tgbotapi.Chat{ID: 4},
		Voice: &tgbotapi.Voice{FileID: "v", Duration: 2},
	}}

	assert.Eventually(t, func() bool {
		return len(api.messages(1)) == 1 && len(api.messages(2)) == 1 && len(api.messages(3)) == 1 && len(api.messages(4)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"echo: hello"}, api.messages(1))
	assert.Equal(t, []string{render.MsgHelp}, api.messages(2))
	assert.Equal(t, []string{render.MsgUnsupported}, api.messages(3))
	assert.Equal(t, []string{render.MsgVoiceDisabled}, api.messages(4))

	require.NoError(t, b.Stop())
}
