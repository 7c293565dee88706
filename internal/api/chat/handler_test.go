package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/integration/embedder"
	"github.com/futig/jarvis-backend/internal/pkg/extractor"
	"github.com/futig/jarvis-backend/internal/pkg/response"
	"github.com/futig/jarvis-backend/internal/pkg/retry"
	"github.com/futig/jarvis-backend/internal/pkg/validator"
	"github.com/futig/jarvis-backend/internal/repository"
	chatuc "github.com/futig/jarvis-backend/internal/usecase/chat"
)

type fakeUsecase struct {
	mu    sync.Mutex
	turns []*entity.ChatTurn
	reply string
	err   error
}

func (f *fakeUsecase) Exchange(_ context.Context, turn *entity.ChatTurn) (*entity.ChatResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns = append(f.turns, turn)
	if f.err != nil {
		return nil, f.err
	}
	return &entity.ChatResult{Reply: f.reply}, nil
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveWSMessage(direction string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[direction]++
}

func testUploadConfig() config.FileUploadConfig {
	return config.FileUploadConfig{
		MaxFileSize:   64,
		MaxTotalSize:  100,
		MaxFileCount:  2,
		MaxUploadSize: 4096,
	}
}

func newTestRouter(uc ChatUsecase, observer MessageObserver) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, validator.NewFileValidator(testUploadConfig()), observer), 5*time.Second)
	return r
}

type upload struct {
	name    string
	content string
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func doRequest(h http.Handler, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp entity.ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Response
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestChat_JSON(t *testing.T) {
	uc := &fakeUsecase{reply: "At your service."}
	h := newTestRouter(uc, nil)

	rec := doRequest(h, "application/json", bytes.NewBufferString(`{"message":"hello","chat_history":"User: hi"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "At your service.", decodeReply(t, rec))
	require.Len(t, uc.turns, 1)
	assert.Equal(t, "hello", uc.turns[0].UserMessage)
	assert.Equal(t, "User: hi", uc.turns[0].HistorySnippet)
	assert.Empty(t, uc.turns[0].Files)
}

func TestChat_JSONWithoutContentType(t *testing.T) {
	uc := &fakeUsecase{reply: "ok"}
	rec := doRequest(newTestRouter(uc, nil), "", bytes.NewBufferString(`{"message":"hello"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeReply(t, rec))
}

func TestChat_Multipart(t *testing.T) {
	uc := &fakeUsecase{reply: "read it"}
	h := newTestRouter(uc, nil)

	body, ct := multipartBody(t,
		map[string]string{"message": "summarize", "chat_history": "User: earlier"},
		upload{name: "notes.txt", content: "buy milk"},
		upload{name: "plan.md", content: "# plan"},
	)
	rec := doRequest(h, ct, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "read it", decodeReply(t, rec))

	require.Len(t, uc.turns, 1)
	turn := uc.turns[0]
	assert.Equal(t, "summarize", turn.UserMessage)
	assert.Equal(t, "User: earlier", turn.HistorySnippet)
	require.Len(t, turn.Files, 2)
	assert.Equal(t, "notes.txt", turn.Files[0].Filename)
	assert.Equal(t, []byte("buy milk"), turn.Files[0].Content)
	assert.Equal(t, "plan.md", turn.Files[1].Filename)
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{name: "malformed json", contentType: "application/json", body: `{"message":`, status: http.StatusBadRequest},
		{name: "empty body", contentType: "application/json", body: ``, status: http.StatusBadRequest},
		{name: "unsupported content type", contentType: "text/plain", body: `hello`, status: http.StatusBadRequest},
		{name: "body over upload limit", contentType: "application/json", body: `{"message":"` + strings.Repeat("a", 5000) + `"}`, status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUsecase{reply: "unused"}
			rec := doRequest(newTestRouter(uc, nil), tt.contentType, bytes.NewBufferString(tt.body))

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
			assert.Empty(t, uc.turns)
		})
	}
}

func TestChat_UploadLimits(t *testing.T) {
	t.Run("too many files", func(t *testing.T) {
		uc := &fakeUsecase{}
		body, ct := multipartBody(t, map[string]string{"message": "x"},
			upload{name: "a.txt", content: "a"},
			upload{name: "b.txt", content: "b"},
			upload{name: "c.txt", content: "c"},
		)
		rec := doRequest(newTestRouter(uc, nil), ct, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, uc.turns)
	})

	t.Run("file too large", func(t *testing.T) {
		uc := &fakeUsecase{}
		body, ct := multipartBody(t, map[string]string{"message": "x"},
			upload{name: "big.txt", content: strings.Repeat("b", 65)},
		)
		rec := doRequest(newTestRouter(uc, nil), ct, body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, uc.turns)
	})

	t.Run("total too large", func(t *testing.T) {
		uc := &fakeUsecase{}
		body, ct := multipartBody(t, map[string]string{"message": "x"},
			upload{name: "a.txt", content: strings.Repeat("a", 60)},
			upload{name: "b.txt", content: strings.Repeat("b", 60)},
		)
		rec := doRequest(newTestRouter(uc, nil), ct, body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestChat_InternalErrorHidesDetails(t *testing.T) {
	uc := &fakeUsecase{err: errors.New("query memory: connection refused to 10.0.0.5")}
	rec := doRequest(newTestRouter(uc, nil), "application/json", bytes.NewBufferString(`{"message":"hi"}`))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decodeError(t, rec))
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestChat_GenerationFailureStillSucceeds(t *testing.T) {
	store, err := repository.NewMemoryChromem("", entity.IndexSpec{Name: "jarvis-memory", Dimension: 384, Metric: "cosine"})
	require.NoError(t, err)

	noRetry := &retry.RetryConfig{Attempts: 1}
	uc := chatuc.NewUsecase(
		embedder.NewMockConnector(384),
		store,
		failingGenerator{},
		extractor.New(),
		config.ChatConfig{TopK: 5, PersonaName: "Jarvis", QueryPolicy: "combined", PersistDegradedReplies: true, RecordIDScheme: "sha256"},
		chatuc.WithRetry(noRetry, noRetry),
	)

	body, ct := multipartBody(t, map[string]string{"message": "what is in here?"},
		upload{name: "notes.txt", content: "remember the milk"},
		upload{name: "tool.exe", content: "MZ"},
	)
	rec := doRequest(newTestRouter(uc, nil), ct, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chatuc.GenerationErrorPrefix+"quota exceeded", decodeReply(t, rec))
	assert.Equal(t, 1, store.Count())
}

// stalledGenerator never answers on its own; it returns once the request
// deadline expires.
type stalledGenerator struct{}

func (stalledGenerator) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestChat_GenerationTimeoutIsPersisted(t *testing.T) {
	store, err := repository.NewMemoryChromem("", entity.IndexSpec{Name: "jarvis-memory", Dimension: 384, Metric: "cosine"})
	require.NoError(t, err)

	noRetry := &retry.RetryConfig{Attempts: 1}
	uc := chatuc.NewUsecase(
		embedder.NewMockConnector(384),
		store,
		stalledGenerator{},
		extractor.New(),
		config.ChatConfig{TopK: 5, PersonaName: "Jarvis", QueryPolicy: "combined", PersistDegradedReplies: true, RecordIDScheme: "sha256"},
		chatuc.WithRetry(noRetry, noRetry),
	)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, validator.NewFileValidator(testUploadConfig()), nil), 100*time.Millisecond)

	rec := doRequest(r, "application/json", bytes.NewBufferString(`{"message":"are you still there?"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chatuc.GenerationErrorPrefix+context.DeadlineExceeded.Error(), decodeReply(t, rec))
	assert.Equal(t, 1, store.Count())
}

func TestChat_EmptyTurnEngages(t *testing.T) {
	store, err := repository.NewMemoryChromem("", entity.IndexSpec{Name: "jarvis-memory", Dimension: 384, Metric: "cosine"})
	require.NoError(t, err)

	uc := chatuc.NewUsecase(embedder.NewMockConnector(384), store, failingGenerator{}, extractor.New(), config.ChatConfig{})

	rec := doRequest(newTestRouter(uc, nil), "application/json", bytes.NewBufferString(`{"message":"   "}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chatuc.EngagementReply, decodeReply(t, rec))
	assert.Equal(t, 0, store.Count())
}

func TestChatWS(t *testing.T) {
	uc := &fakeUsecase{reply: "Indeed."}
	observer := &countingObserver{}
	srv := httptest.NewServer(newTestRouter(uc, observer))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(entity.ChatRequest{Message: "hello", ChatHistory: "User: hi"}))
	var reply entity.ChatResponse
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "Indeed.", reply.Response)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var failure response.ErrorResponse
	require.NoError(t, conn.ReadJSON(&failure))
	assert.Equal(t, entity.ErrInvalidRequest.Error(), failure.Error)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	uc.mu.Lock()
	require.Len(t, uc.turns, 1)
	assert.Equal(t, "hello", uc.turns[0].UserMessage)
	uc.mu.Unlock()

	assert.Eventually(t, func() bool {
		observer.mu.Lock()
		defer observer.mu.Unlock()
		return observer.counts["in"] == 2 && observer.counts["out"] == 2
	}, time.Second, 10*time.Millisecond)
}

func TestChatWS_UsecaseError(t *testing.T) {
	uc := &fakeUsecase{err: errors.New("embed query: timeout")}
	srv := httptest.NewServer(newTestRouter(uc, nil))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/chat/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(entity.ChatRequest{Message: "hello"}))
	var failure response.ErrorResponse
	require.NoError(t, conn.ReadJSON(&failure))
	assert.Equal(t, "Internal Server Error", failure.Error)
}
