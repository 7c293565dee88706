package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/pkg/logger"
	"github.com/futig/jarvis-backend/internal/pkg/response"
	"github.com/futig/jarvis-backend/internal/pkg/validator"
)

// multipart parts beyond this size are spooled to disk by net/http
const multipartMemory = 8 << 20

type Handler struct {
	usecase   ChatUsecase
	validator *validator.Validator
	observer  MessageObserver
	upgrader  websocket.Upgrader
}

func NewHandler(usecase ChatUsecase, validator *validator.Validator, observer MessageObserver) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
		observer:  observer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Chat handles POST /chat
//
// The body is either JSON {message, chat_history} or multipart form data with
// the same fields plus any number of "files" parts.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	var turn *entity.ChatTurn
	switch mediaType {
	case "multipart/form-data":
		turn, err = h.parseMultipart(w, r)
	case "application/json", "":
		turn, err = h.parseJSON(w, r)
	default:
		err = fmt.Errorf("%w: unsupported content type %q", entity.ErrInvalidRequest, mediaType)
	}
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	ctxzap.Debug(ctx, "chat request parsed",
		zap.String("content_type", mediaType),
		zap.Int("files", len(turn.Files)),
	)

	result, err := h.usecase.Exchange(ctx, turn)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	response.Chat(w, result.Reply)
}

func (h *Handler) parseJSON(w http.ResponseWriter, r *http.Request) (*entity.ChatTurn, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxUploadSize())

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, bodyError(err)
	}
	if err := h.validator.ValidateChat(&req); err != nil {
		return nil, err
	}
	return toChatTurn(&req, nil), nil
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (*entity.ChatTurn, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxUploadSize())

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, bodyError(err)
	}
	defer r.MultipartForm.RemoveAll()

	req := entity.ChatRequest{
		Message:     r.FormValue("message"),
		ChatHistory: r.FormValue("chat_history"),
	}
	if err := h.validator.ValidateChat(&req); err != nil {
		return nil, err
	}

	headers := r.MultipartForm.File["files"]
	if err := h.validator.ValidateUpload(headers); err != nil {
		return nil, err
	}

	files, err := readFiles(headers)
	if err != nil {
		return nil, err
	}
	return toChatTurn(&req, files), nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: body exceeds %d bytes", entity.ErrPayloadTooLarge, maxErr.Limit)
	}
	return fmt.Errorf("%w: %v", entity.ErrInvalidRequest, err)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrPayloadTooLarge),
		errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrTotalSizeTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrInvalidRequest),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrTooManyFiles):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		ctxzap.Error(ctx, "chat request failed", zap.Error(err))
		response.Error(w, status, http.StatusText(status))
		return
	}

	ctxzap.Warn(ctx, "chat request rejected", zap.Int("status", status), zap.Error(err))
	response.Error(w, status, err.Error())
}
