package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/pkg/logger"
	"github.com/futig/jarvis-backend/internal/pkg/response"
)

const wsReadLimit = 1 << 20

// ChatWS handles GET /chat/ws
//
// Every text frame carries a ChatRequest and is answered with a ChatResponse
// or an ErrorResponse. Frames are processed one at a time.
func (h *Handler) ChatWS(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ChatWS")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctxzap.Warn(ctx, "websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	ctxzap.Info(ctx, "websocket chat opened")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ctxzap.Warn(ctx, "websocket read failed", zap.Error(err))
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		h.observeWS("in")

		if err := conn.WriteJSON(h.answerFrame(r, data)); err != nil {
			ctxzap.Warn(ctx, "websocket write failed", zap.Error(err))
			break
		}
		h.observeWS("out")
	}

	ctxzap.Info(ctx, "websocket chat closed")
}

func (h *Handler) answerFrame(r *http.Request, data []byte) any {
	ctx := logger.WithAction(r.Context(), "ChatWS")

	var req entity.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return response.ErrorResponse{Error: entity.ErrInvalidRequest.Error()}
	}
	if err := h.validator.ValidateChat(&req); err != nil {
		return response.ErrorResponse{Error: err.Error()}
	}

	result, err := h.usecase.Exchange(ctx, toChatTurn(&req, nil))
	if err != nil {
		ctxzap.Error(ctx, "websocket chat turn failed", zap.Error(err))
		if errors.Is(err, entity.ErrInvalidRequest) {
			return response.ErrorResponse{Error: err.Error()}
		}
		return response.ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)}
	}
	return entity.ChatResponse{Response: result.Reply}
}

func (h *Handler) observeWS(direction string) {
	if h.observer != nil {
		h.observer.ObserveWSMessage(direction)
	}
}
