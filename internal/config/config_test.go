package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("unittest")
	require.NoError(t, err)

	assert.Equal(t, "unittest", cfg.Environment)
	assert.Equal(t, ":8000", cfg.ServerAddr)
	assert.Equal(t, 5, cfg.ChatCfg.TopK)
	assert.Equal(t, "Jarvis", cfg.ChatCfg.PersonaName)
	assert.Equal(t, QueryPolicyCombined, cfg.ChatCfg.QueryPolicy)
	assert.Equal(t, RecordIDSHA256, cfg.ChatCfg.RecordIDScheme)
	assert.True(t, cfg.ChatCfg.PersistDegradedReplies)
	assert.Equal(t, "jarvis-memory", cfg.VectorStoreCfg.IndexName)
	assert.Equal(t, 384, cfg.VectorStoreCfg.Dimension)
	assert.Equal(t, "cosine", cfg.VectorStoreCfg.Metric)
	assert.Equal(t, "aws", cfg.PineconeCfg.Cloud)
	assert.Equal(t, "us-east-1", cfg.PineconeCfg.Region)
	assert.Equal(t, 2*time.Hour, cfg.TelegramCfg.HistoryTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CHAT_TOP_K", "3")
	t.Setenv("CHAT_QUERY_POLICY", "message")
	t.Setenv("CHAT_PERSONA_NAME", "Friday")
	t.Setenv("VECTOR_STORE_BACKEND", "chromem")
	t.Setenv("EMBEDDER_RETRY_ATTEMPTS", "7")

	cfg, err := Load("unittest")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.ChatCfg.TopK)
	assert.Equal(t, QueryPolicyMessage, cfg.ChatCfg.QueryPolicy)
	assert.Equal(t, "Friday", cfg.ChatCfg.PersonaName)
	assert.Equal(t, VectorStoreChromem, cfg.VectorStoreCfg.Backend)
	assert.EqualValues(t, 7, cfg.EmbedderCfg.Retry.Attempts)
}

func TestLoadMissingKeysIsNotAnError(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PINECONE_API_KEY", "")

	cfg, err := Load("unittest")
	require.NoError(t, err)
	assert.Equal(t, "MISSING!!!...", cfg.KeyStatus()["GEMINI_API_KEY"])
}

func TestValidateConfigCollectsErrors(t *testing.T) {
	t.Setenv("CHAT_TOP_K", "21")
	t.Setenv("CHAT_RECORD_ID_SCHEME", "md5")
	t.Setenv("VECTOR_STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("EMBEDDER_DIMENSION", "768")

	_, err := Load("unittest")
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "CHAT_TOP_K must be between 1 and 20, got 21")
	assert.Contains(t, msg, "CHAT_RECORD_ID_SCHEME")
	assert.Contains(t, msg, "DATABASE_URL is required")
	assert.Contains(t, msg, "VECTOR_STORE_DIMENSION (384) must match EMBEDDER_DIMENSION (768)")
}

func TestValidateConfigPostgresDimension(t *testing.T) {
	t.Setenv("VECTOR_STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://jarvis@localhost:5432/jarvis")
	t.Setenv("VECTOR_STORE_DIMENSION", "768")
	t.Setenv("EMBEDDER_DIMENSION", "768")

	_, err := Load("unittest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VECTOR_STORE_DIMENSION must be 384 for the postgres vector store, got 768")

	t.Setenv("VECTOR_STORE_DIMENSION", "384")
	t.Setenv("EMBEDDER_DIMENSION", "384")

	cfg, err := Load("unittest")
	require.NoError(t, err)
	assert.Equal(t, PostgresVectorDimension, cfg.VectorStoreCfg.Dimension)
}

func TestValidateConfigOtherBackendsAcceptAnyDimension(t *testing.T) {
	t.Setenv("VECTOR_STORE_BACKEND", "chromem")
	t.Setenv("VECTOR_STORE_DIMENSION", "768")
	t.Setenv("EMBEDDER_DIMENSION", "768")

	cfg, err := Load("unittest")
	require.NoError(t, err)
	assert.Equal(t, 768, cfg.VectorStoreCfg.Dimension)
}

func TestRedactKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{name: "missing", key: "", want: "MISSING!!!..."},
		{name: "short", key: "abc", want: "abc..."},
		{name: "exactly fifteen", key: "123456789012345", want: "123456789012345..."},
		{name: "long", key: "AIzaSyD-1234567890abcdefghij", want: "AIzaSyD-1234567..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactKey(tt.key))
		})
	}
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.local", getEnvFile("local"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
