package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/telegram/render"
)

func TestChatHandler_TextMessage(t *testing.T) {
	bot := &fakeBot{}
	chat := &fakeChat{result: &entity.ChatResult{Reply: "Good evening."}}
	hist := newMemoryHistory()
	hist.chats[7] = "User: earlier\nAssistant: noted"

	h := NewChatHandler(bot, chat, hist, NewDownloader(bot, 1024), zap.NewNop())
	err := h.Handle(context.Background(), &Message{ChatID: 7, MessageID: 3, Text: "hello"})
	require.NoError(t, err)

	require.Len(t, chat.turns, 1)
	assert.Equal(t, "hello", chat.turns[0].UserMessage)
	assert.Equal(t, "User: earlier\nAssistant: noted", chat.turns[0].HistorySnippet)
	assert.Empty(t, chat.turns[0].Files)

	assert.Equal(t, []string{"Good evening."}, bot.texts())
	assert.Equal(t, 3, bot.sent[0].ReplyToMessageID)
	assert.GreaterOrEqual(t, bot.actions, 1)
	assert.Contains(t, hist.Get(7), "User: hello\nAssistant: Good evening.")
}

func TestChatHandler_ShortCircuitSkipsHistory(t *testing.T) {
	bot := &fakeBot{}
	chat := &fakeChat{result: &entity.ChatResult{Reply: "Say something, boss!", ShortCircuited: true}}
	hist := newMemoryHistory()

	h := NewChatHandler(bot, chat, hist, NewDownloader(bot, 1024), zap.NewNop())
	require.NoError(t, h.Handle(context.Background(), &Message{ChatID: 7, Text: "  "}))

	assert.Equal(t, []string{"Say something, boss!"}, bot.texts())
	assert.Empty(t, hist.Get(7))
}

func TestChatHandler_Document(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("meeting notes"))
	}))
	defer srv.Close()

	bot := &fakeBot{fileURL: srv.URL + "/file/notes.txt"}
	chat := &fakeChat{result: &entity.ChatResult{Reply: "Read it."}}
	hist := newMemoryHistory()

	downloader := NewDownloader(bot, 1024)
	downloader.client = srv.Client()

	h := NewChatHandler(bot, chat, hist, downloader, zap.NewNop())
	doc := &tgbotapi.Document{FileID: "f1", FileName: "notes.txt", MimeType: "text/plain", FileSize: 13}
	require.NoError(t, h.Handle(context.Background(), &Message{ChatID: 9, Text: "summarize", Document: doc}))

	require.Len(t, chat.turns, 1)
	require.Len(t, chat.turns[0].Files, 1)
	assert.Equal(t, "notes.txt", chat.turns[0].Files[0].Filename)
	assert.Equal(t, []byte("meeting notes"), chat.turns[0].Files[0].Content)
	assert.Contains(t, hist.Get(9), "User: summarize [Attached: notes.txt]")
}

func TestChatHandler_DocumentTooLarge(t *testing.T) {
	bot := &fakeBot{fileURL: "https://api.telegram.org/file/x"}
	chat := &fakeChat{}

	h := NewChatHandler(bot, chat, newMemoryHistory(), NewDownloader(bot, 10), zap.NewNop())
	doc := &tgbotapi.Document{FileID: "f1", FileName: "big.pdf", FileSize: 11}
	err := h.Handle(context.Background(), &Message{ChatID: 9, Document: doc})

	assert.ErrorIs(t, err, entity.ErrFileTooLarge)
	assert.Empty(t, chat.turns)
	assert.Equal(t, []string{render.ErrFileTooLarge}, bot.texts())
}

func TestChatHandler_PipelineError(t *testing.T) {
	bot := &fakeBot{}
	chat := &fakeChat{err: errors.New("query memory: unavailable")}
	hist := newMemoryHistory()

	h := NewChatHandler(bot, chat, hist, NewDownloader(bot, 1024), zap.NewNop())
	err := h.Handle(context.Background(), &Message{ChatID: 1, Text: "hi"})

	assert.Error(t, err)
	assert.Equal(t, []string{render.ErrGeneric}, bot.texts())
	assert.Empty(t, hist.Get(1))
}

func TestChatHandler_LongReplyIsSplit(t *testing.T) {
	bot := &fakeBot{}
	reply := strings.Repeat("word ", 1000)
	chat := &fakeChat{result: &entity.ChatResult{Reply: reply}}

	h := NewChatHandler(bot, chat, newMemoryHistory(), NewDownloader(bot, 1024), zap.NewNop())
	require.NoError(t, h.Handle(context.Background(), &Message{ChatID: 1, MessageID: 5, Text: "talk"}))

	texts := bot.texts()
	require.Len(t, texts, 2)
	for _, text := range texts {
		assert.LessOrEqual(t, len([]rune(text)), render.MaxMessageLength)
	}
	assert.Equal(t, 5, bot.sent[0].ReplyToMessageID)
	assert.Zero(t, bot.sent[1].ReplyToMessageID)
}

func TestDownloader_RejectsPlainHTTP(t *testing.T) {
	bot := &fakeBot{fileURL: "http://api.telegram.org/file/x"}
	_, err := NewDownloader(bot, 0).Download(context.Background(), &tgbotapi.Document{FileID: "f", FileName: "a.txt"})
	assert.ErrorContains(t, err, "insecure URL scheme")
}

func TestCommandHandler(t *testing.T) {
	bot := &fakeBot{}
	hist := newMemoryHistory()
	hist.chats[1] = "User: a\nAssistant: b"

	h := NewCommandHandler(bot, hist, "Jarvis", zap.NewNop())
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: CommandHelp}))
	assert.NotEmpty(t, hist.Get(1))

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: CommandForget}))
	assert.Empty(t, hist.Get(1))

	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: CommandStart}))
	require.NoError(t, h.Handle(ctx, &Message{ChatID: 1, Command: "bogus"}))

	texts := bot.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, render.MsgHelp, texts[0])
	assert.Equal(t, render.MsgForgotten, texts[1])
	assert.Contains(t, texts[2], "I'm Jarvis")
	assert.Equal(t, render.MsgUnknownCommand, texts[3])
}
