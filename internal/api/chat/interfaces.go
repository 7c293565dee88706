package chat

import (
	"context"

	"github.com/futig/jarvis-backend/internal/entity"
)

type ChatUsecase interface {
	Exchange(ctx context.Context, turn *entity.ChatTurn) (*entity.ChatResult, error)
}

// MessageObserver counts websocket frames by direction
type MessageObserver interface {
	ObserveWSMessage(direction string)
}
