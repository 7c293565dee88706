package asr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/jarvis-backend/internal/config"
	pkghttp "github.com/futig/jarvis-backend/pkg/http"
)

func newTestConnector(url string) *Connector {
	return NewConnector(config.ASRConnectorConfig{
		HTTPClientConfig:   config.HTTPClientConfig{Url: url},
		TranscribeEndpoint: "/transcribe",
	}, zap.NewNop())
}

func TestTranscribe(t *testing.T) {
	audio := []byte("OggS fake opus payload")
	sum := sha256.Sum256(audio)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)

		assert.Equal(t, "voice.ogg", header.Filename)
		assert.Equal(t, audio, body)
		assert.Equal(t, hex.EncodeToString(sum[:]), r.FormValue("checksum"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcriptions":"  remind me about the meeting  "}`))
	}))
	defer srv.Close()

	text, err := newTestConnector(srv.URL).Transcribe(context.Background(), audio, "voice.ogg")
	require.NoError(t, err)
	assert.Equal(t, "remind me about the meeting", text)
}

func TestTranscribe_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestConnector(srv.URL).Transcribe(context.Background(), []byte("x"), "voice.ogg")
	require.Error(t, err)
	assert.True(t, pkghttp.IsStatus(err, http.StatusServiceUnavailable))
}

func TestTranscribe_EmptyAudio(t *testing.T) {
	_, err := newTestConnector("http://unused").Transcribe(context.Background(), nil, "voice.ogg")
	require.Error(t, err)

	_, err = NewMockConnector().Transcribe(context.Background(), nil, "voice.ogg")
	require.Error(t, err)
}

func TestMockTranscribe(t *testing.T) {
	text, err := NewMockConnector().Transcribe(context.Background(), []byte("abcd"), "voice.ogg")
	require.NoError(t, err)
	assert.Equal(t, "This is a transcribed voice message of 4 bytes.", text)
}
