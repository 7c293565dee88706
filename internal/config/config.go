package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/jarvis-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Vector store backends
const (
	VectorStorePinecone = "pinecone"
	VectorStoreChromem  = "chromem"
	VectorStorePostgres = "postgres"
)

// Generation providers
const (
	GeneratorGemini    = "gemini"
	GeneratorAnthropic = "anthropic"
)

// Embedder providers
const (
	EmbedderHTTP = "http"
	EmbedderONNX = "onnx"
)

// Query policies decide which parts of a chat turn feed the retrieval query
const (
	QueryPolicyCombined = "combined"
	QueryPolicyMessage  = "message"
)

// Record ID schemes
const (
	RecordIDSHA256 = "sha256"
	RecordIDUUID   = "uuid"
)

// PostgresVectorDimension is the width of the memory_records.embedding
// column created by the migrations.
const PostgresVectorDimension = 384

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`

	// API keys. Missing keys are only reported, the process keeps starting.
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	PineconeAPIKey  string `env:"PINECONE_API_KEY"`

	// UniDoc metered key, without it DOCX attachments cannot be read
	UnidocLicenseKey string `env:"UNIDOC_LICENSE_API_KEY"`

	// External service configurations
	EmbedderCfg    EmbedderConfig     `envPrefix:"EMBEDDER_"`
	GeneratorCfg   GeneratorConfig    `envPrefix:"GENERATOR_"`
	VectorStoreCfg VectorStoreConfig  `envPrefix:"VECTOR_STORE_"`
	PineconeCfg    PineconeConfig     `envPrefix:"PINECONE_"`
	ASRCfg         ASRConnectorConfig `envPrefix:"ASR_"`

	// Database configuration, used by the postgres vector store only
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Exchange pipeline configuration
	ChatCfg ChatConfig `envPrefix:"CHAT_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Metrics namespace for prometheus collectors
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"jarvis"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// ChatConfig tunes the exchange pipeline
type ChatConfig struct {
	TopK                   int    `env:"TOP_K" envDefault:"5"`
	PersonaName            string `env:"PERSONA_NAME" envDefault:"Jarvis"`
	QueryPolicy            string `env:"QUERY_POLICY" envDefault:"combined"`
	PersistDegradedReplies bool   `env:"PERSIST_DEGRADED_REPLIES" envDefault:"true"`
	RecordIDScheme         string `env:"RECORD_ID_SCHEME" envDefault:"sha256"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string        `env:"BOT_TOKEN"`
	UpdateTimeout      int           `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int           `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	HistoryTTL         time.Duration `env:"HISTORY_TTL" envDefault:"2h"`
	HistoryMaxChars    int           `env:"HISTORY_MAX_CHARS" envDefault:"4000"`
}

type EmbedderConfig struct {
	HTTPClientConfig
	Provider      string               `env:"PROVIDER" envDefault:"http"`
	EmbedEndpoint string               `env:"EMBED_ENDPOINT" envDefault:"/embed"`
	ModelPath     string               `env:"MODEL_PATH"`
	TokenizerPath string               `env:"TOKENIZER_PATH"`
	RuntimePath   string               `env:"RUNTIME_PATH"`
	Dimension     int                  `env:"DIMENSION" envDefault:"384"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type GeneratorConfig struct {
	Provider  string `env:"PROVIDER" envDefault:"gemini"`
	Model     string `env:"MODEL" envDefault:"gemini-2.5-pro"`
	MaxTokens int64  `env:"MAX_TOKENS" envDefault:"1024"`
}

type VectorStoreConfig struct {
	Backend     string               `env:"BACKEND" envDefault:"pinecone"`
	IndexName   string               `env:"INDEX_NAME" envDefault:"jarvis-memory"`
	Dimension   int                  `env:"DIMENSION" envDefault:"384"`
	Metric      string               `env:"METRIC" envDefault:"cosine"`
	ChromemPath string               `env:"CHROMEM_PATH"`
	Retry       pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type PineconeConfig struct {
	HTTPClientConfig
	APIVersion     string        `env:"API_VERSION" envDefault:"2025-01"`
	Cloud          string        `env:"CLOUD" envDefault:"aws"`
	Region         string        `env:"REGION" envDefault:"us-east-1"`
	Namespace      string        `env:"NAMESPACE"`
	ReadyTimeout   time.Duration `env:"READY_TIMEOUT" envDefault:"60s"`
	ReadyPollDelay time.Duration `env:"READY_POLL_DELAY" envDefault:"1s"`
	HostCacheTTL   time.Duration `env:"HOST_CACHE_TTL" envDefault:"10m"`
}

// ASRConnectorConfig points at the speech recognition service used for
// Telegram voice messages. Voice support is off when SERVICE_URL is empty.
type ASRConnectorConfig struct {
	HTTPClientConfig
	TranscribeEndpoint string `env:"TRANSCRIBE_ENDPOINT" envDefault:"/transcribe"`
	MaxVoiceSize       int64  `env:"MAX_VOICE_SIZE" envDefault:"10485760"` // 10 MiB
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"5242880"`    // 5 MiB
	MaxTotalSize  int64 `env:"MAX_TOTAL_SIZE" envDefault:"26214400"`  // 25 MiB
	MaxFileCount  int   `env:"MAX_FILE_COUNT" envDefault:"10"`        // Max 10 files
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return Load(*envFlag)
}

// Load reads the env file for the given environment and parses the config
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.ChatCfg.TopK < 1 || cfg.ChatCfg.TopK > 20 {
		errors = append(errors, fmt.Sprintf("CHAT_TOP_K must be between 1 and 20, got %d", cfg.ChatCfg.TopK))
	}

	switch cfg.ChatCfg.QueryPolicy {
	case QueryPolicyCombined, QueryPolicyMessage:
	default:
		errors = append(errors, fmt.Sprintf("CHAT_QUERY_POLICY must be one of combined, message; got %q", cfg.ChatCfg.QueryPolicy))
	}

	switch cfg.ChatCfg.RecordIDScheme {
	case RecordIDSHA256, RecordIDUUID:
	default:
		errors = append(errors, fmt.Sprintf("CHAT_RECORD_ID_SCHEME must be one of sha256, uuid; got %q", cfg.ChatCfg.RecordIDScheme))
	}

	switch cfg.VectorStoreCfg.Backend {
	case VectorStorePinecone, VectorStoreChromem:
	case VectorStorePostgres:
		if cfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required for the postgres vector store")
		}
		if cfg.VectorStoreCfg.Dimension != PostgresVectorDimension {
			errors = append(errors, fmt.Sprintf("VECTOR_STORE_DIMENSION must be %d for the postgres vector store, got %d",
				PostgresVectorDimension, cfg.VectorStoreCfg.Dimension))
		}
	default:
		errors = append(errors, fmt.Sprintf("VECTOR_STORE_BACKEND must be one of pinecone, chromem, postgres; got %q", cfg.VectorStoreCfg.Backend))
	}

	switch cfg.GeneratorCfg.Provider {
	case GeneratorGemini, GeneratorAnthropic:
	default:
		errors = append(errors, fmt.Sprintf("GENERATOR_PROVIDER must be one of gemini, anthropic; got %q", cfg.GeneratorCfg.Provider))
	}

	switch cfg.EmbedderCfg.Provider {
	case EmbedderHTTP, EmbedderONNX:
	default:
		errors = append(errors, fmt.Sprintf("EMBEDDER_PROVIDER must be one of http, onnx; got %q", cfg.EmbedderCfg.Provider))
	}

	if cfg.VectorStoreCfg.Dimension != cfg.EmbedderCfg.Dimension {
		errors = append(errors, fmt.Sprintf("VECTOR_STORE_DIMENSION (%d) must match EMBEDDER_DIMENSION (%d)",
			cfg.VectorStoreCfg.Dimension, cfg.EmbedderCfg.Dimension))
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// RedactKey renders an API key for diagnostic logs: the first 15 characters
// followed by an ellipsis. A missing key shows as a loud marker.
func RedactKey(key string) string {
	if key == "" {
		key = "MISSING!!!"
	}
	if len(key) > 15 {
		key = key[:15]
	}
	return key + "..."
}

// KeyStatus lists the redacted form of every API key the process may use
func (c *Config) KeyStatus() map[string]string {
	return map[string]string{
		"GEMINI_API_KEY":         RedactKey(c.GeminiAPIKey),
		"ANTHROPIC_API_KEY":      RedactKey(c.AnthropicAPIKey),
		"PINECONE_API_KEY":       RedactKey(c.PineconeAPIKey),
		"UNIDOC_LICENSE_API_KEY": RedactKey(c.UnidocLicenseKey),
	}
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
