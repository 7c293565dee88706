package asr

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector stands in for the speech recognition service in mock mode
type MockConnector struct{}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

// Transcribe returns a fixed sentence naming the recording size
func (m *MockConnector) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio data provided")
	}

	ctxzap.Debug(ctx, "[MOCK] transcribing voice message",
		zap.String("filename", filename),
		zap.Int("size", len(audio)),
	)
	return fmt.Sprintf("This is a transcribed voice message of %d bytes.", len(audio)), nil
}
