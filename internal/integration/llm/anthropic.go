package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
)

// Anthropic generates replies with the Claude Messages API
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	apiKey    string
}

// NewAnthropic creates the client. Extra request options are appended after
// the API key, e.g. a base URL for a proxy.
func NewAnthropic(cfg config.GeneratorConfig, apiKey string, opts ...option.RequestOption) *Anthropic {
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &Anthropic{
		client:    anthropic.NewClient(reqOpts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		apiKey:    apiKey,
	}
}

// Generate sends prompt as a single user message and returns the text blocks
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	if a.apiKey == "" {
		return "", errors.New("anthropic: ANTHROPIC_API_KEY is not set")
	}

	ctxzap.Debug(ctx, "generating reply via anthropic", zap.String("model", a.model), zap.Int("prompt_length", len(prompt)))

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", fmt.Errorf("%w: stop reason %s", entity.ErrEmptyCompletion, resp.StopReason)
	}
	return reply, nil
}

func (a *Anthropic) Close() error {
	return nil
}
