package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
)

// Gemini generates replies with the Google Gemini API
type Gemini struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	name    string
	initErr error
}

// NewGemini creates the Gemini client. A missing or rejected key does not
// fail construction: the error is returned from every Generate call so the
// service still starts.
func NewGemini(ctx context.Context, cfg config.GeneratorConfig, apiKey string, logger *zap.Logger) *Gemini {
	g := &Gemini{name: cfg.Model}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		logger.Warn("gemini client unavailable", zap.Error(err))
		g.initErr = fmt.Errorf("gemini client: %w", err)
		return g
	}

	g.client = client
	g.model = client.GenerativeModel(cfg.Model)
	if cfg.MaxTokens > 0 {
		g.model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}

	return g
}

// Generate sends prompt as a single user turn and returns the reply text
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.initErr != nil {
		return "", g.initErr
	}

	ctxzap.Debug(ctx, "generating reply via gemini", zap.String("model", g.name), zap.Int("prompt_length", len(prompt)))

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	return responseText(resp)
}

// Close releases the underlying client
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", entity.ErrEmptyCompletion
	}

	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("%w: finish reason %s", entity.ErrEmptyCompletion, cand.FinishReason)
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", entity.ErrEmptyCompletion
	}
	return reply, nil
}
