package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/config"
	"github.com/futig/jarvis-backend/internal/entity"
	"github.com/futig/jarvis-backend/internal/pkg/logger"
	"github.com/futig/jarvis-backend/internal/pkg/retry"
)

// EngagementReply is returned when a turn carries neither text nor files
const EngagementReply = "Say something, boss!"

// GenerationErrorPrefix starts every reply synthesized from a generation failure
const GenerationErrorPrefix = "⚠️ Generation error: "

// persistTimeout bounds the memory write, which runs detached from the
// request context.
const persistTimeout = 30 * time.Second

// ChatUsecase runs the retrieval-augmented exchange pipeline. It holds no
// per-request state and is safe for concurrent use.
type ChatUsecase struct {
	embedder   Embedder
	store      MemoryStore
	generator  Generator
	extractor  FileExtractor
	observer   Observer
	cfg        config.ChatConfig
	embedRetry *retry.RetryConfig
	storeRetry *retry.RetryConfig
	now        func() time.Time
}

type Option func(*ChatUsecase)

// WithObserver reports pipeline measurements to o
func WithObserver(o Observer) Option {
	return func(uc *ChatUsecase) {
		if o != nil {
			uc.observer = o
		}
	}
}

// WithRetry sets the retry policies of embedder and store calls
func WithRetry(embed, store *retry.RetryConfig) Option {
	return func(uc *ChatUsecase) {
		uc.embedRetry = embed
		uc.storeRetry = store
	}
}

// WithClock overrides the timestamp source of stored records
func WithClock(now func() time.Time) Option {
	return func(uc *ChatUsecase) {
		uc.now = now
	}
}

// NewUsecase creates a new chat use case
func NewUsecase(
	embedder Embedder,
	store MemoryStore,
	generator Generator,
	extractor FileExtractor,
	cfg config.ChatConfig,
	opts ...Option,
) *ChatUsecase {
	uc := &ChatUsecase{
		embedder:   embedder,
		store:      store,
		generator:  generator,
		extractor:  extractor,
		observer:   noopObserver{},
		cfg:        cfg,
		embedRetry: retry.DefaultRetryConfig(),
		storeRetry: retry.DefaultRetryConfig(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.cfg.TopK <= 0 {
		uc.cfg.TopK = 5
	}
	if uc.cfg.PersonaName == "" {
		uc.cfg.PersonaName = "Jarvis"
	}
	return uc
}

// Exchange answers one chat turn and records it in memory. Generation
// failures become a visible reply; embedder and store failures are returned
// as errors after retries.
func (uc *ChatUsecase) Exchange(ctx context.Context, turn *entity.ChatTurn) (*entity.ChatResult, error) {
	ctx = logger.WithAction(ctx, "chat_exchange")

	start := time.Now()
	attachments := uc.extractor.ExtractAll(ctx, turn.Files)
	uc.observer.ObserveStage(StageExtract, time.Since(start))

	message := strings.TrimSpace(turn.UserMessage)
	history := strings.TrimSpace(turn.HistorySnippet)
	attachmentText := joinAttachments(attachments)

	if message == "" && attachmentText == "" {
		ctxzap.Info(ctx, "empty chat turn, asking user to engage")
		uc.observer.ObserveExchange(OutcomeEmpty)
		return &entity.ChatResult{Reply: EngagementReply, ShortCircuited: true}, nil
	}

	ctx = logger.AddFields(ctx,
		zap.Int("message_length", len(message)),
		zap.Int("attachment_count", len(attachments)),
	)

	result, err := uc.exchange(ctx, message, history, attachments, attachmentText)
	if err != nil {
		uc.observer.ObserveExchange(OutcomeError)
		ctxzap.Error(ctx, "chat exchange failed", zap.Error(err))
		return nil, err
	}

	if result.Degraded {
		uc.observer.ObserveExchange(OutcomeDegraded)
	} else {
		uc.observer.ObserveExchange(OutcomeOK)
	}

	ctxzap.Info(ctx, "chat exchange completed",
		zap.String("record_id", result.RecordID),
		zap.Int("context_matches", result.ContextMatches),
		zap.Bool("degraded", result.Degraded),
		zap.Bool("persisted", result.Persisted),
	)
	return result, nil
}

func (uc *ChatUsecase) exchange(
	ctx context.Context,
	message, history string,
	attachments []entity.Attachment,
	attachmentText string,
) (*entity.ChatResult, error) {
	query := uc.buildQuery(message, attachmentText, history)

	start := time.Now()
	queryVec, err := retry.DoWithData(ctx, uc.embedRetry, "embed query", func() ([]float32, error) {
		return uc.embedder.Embed(ctx, query)
	})
	uc.observer.ObserveStage(StageEmbed, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	start = time.Now()
	matches, err := retry.DoWithData(ctx, uc.storeRetry, "query memory", func() ([]entity.MemoryMatch, error) {
		return uc.store.Query(ctx, queryVec, uc.cfg.TopK)
	})
	uc.observer.ObserveStage(StageRetrieve, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("query memory: %w", err)
	}

	ctxzap.Debug(ctx, "memories retrieved", zap.Int("matches", len(matches)))

	prompt := BuildPrompt(PromptInput{
		Persona:     uc.cfg.PersonaName,
		History:     history,
		Memories:    joinMatches(matches),
		Attachments: attachmentText,
		Message:     message,
	})

	result := &entity.ChatResult{ContextMatches: len(matches)}

	start = time.Now()
	reply, err := uc.generator.Generate(ctx, prompt)
	uc.observer.ObserveStage(StageGenerate, time.Since(start))
	if err != nil {
		ctxzap.Warn(ctx, "generation failed, replying with the error", zap.Error(err))
		uc.observer.ObserveGenerationError()
		reply = GenerationErrorPrefix + err.Error()
		result.Degraded = true
	}
	result.Reply = reply

	if result.Degraded && !uc.cfg.PersistDegradedReplies {
		return result, nil
	}

	persistCtx, cancel := context.WithTimeout(logger.Detach(ctx), persistTimeout)
	defer cancel()

	start = time.Now()
	err = uc.persist(persistCtx, userText(message, attachments), reply, result)
	uc.observer.ObserveStage(StagePersist, time.Since(start))
	if err != nil {
		return nil, err
	}

	return result, nil
}

// persist embeds the exchange and upserts it as one memory record
func (uc *ChatUsecase) persist(ctx context.Context, user, reply string, result *entity.ChatResult) error {
	vec, err := retry.DoWithData(ctx, uc.embedRetry, "embed exchange", func() ([]float32, error) {
		return uc.embedder.Embed(ctx, user+"\n"+reply)
	})
	if err != nil {
		return fmt.Errorf("embed exchange: %w", err)
	}

	record := entity.MemoryRecord{
		ID:     recordID(uc.cfg.RecordIDScheme, user, reply),
		Vector: vec,
		Metadata: map[string]string{
			entity.MetadataText:      exchangeText(user, reply),
			entity.MetadataKind:      entity.MemoryKindExchange,
			entity.MetadataCreatedAt: uc.now().UTC().Format(time.RFC3339),
		},
	}

	err = retry.Do(ctx, uc.storeRetry, "upsert memory", func() error {
		return uc.store.Upsert(ctx, []entity.MemoryRecord{record})
	})
	if err != nil {
		return fmt.Errorf("upsert memory: %w", err)
	}

	result.RecordID = record.ID
	result.Persisted = true
	return nil
}

// buildQuery joins the parts of the turn that feed retrieval
func (uc *ChatUsecase) buildQuery(message, attachmentText, history string) string {
	parts := []string{message}
	if uc.cfg.QueryPolicy != config.QueryPolicyMessage || message == "" {
		parts = append(parts, attachmentText)
	}
	parts = append(parts, history)

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

// userText is what the stored exchange attributes to the user. A files-only
// turn is recorded by its file names.
func userText(message string, attachments []entity.Attachment) string {
	if message != "" || len(attachments) == 0 {
		return message
	}

	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		names = append(names, a.Filename)
	}
	return "[Attached: " + strings.Join(names, ", ") + "]"
}
