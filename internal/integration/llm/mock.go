package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockGenerator - мок генератора для локального запуска без ключей API.
// Отвечает эхом последней реплики пользователя из промпта.
type MockGenerator struct {
	persona string
}

func NewMockGenerator(persona string) *MockGenerator {
	return &MockGenerator{persona: persona}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating reply", zap.Int("prompt_length", len(prompt)))

	userLine := ""
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "User: ") {
			userLine = strings.TrimPrefix(line, "User: ")
		}
	}

	return fmt.Sprintf("%s here! You said: %q", m.persona, userLine), nil
}

func (m *MockGenerator) Close() error {
	return nil
}
