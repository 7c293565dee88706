package logger

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDetach(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := context.WithCancel(ctxzap.ToContext(context.Background(), zap.New(core)))
	ctx = WithAction(ctx, "chat_exchange")
	cancel()

	detached := Detach(ctx)
	require.NoError(t, detached.Err())
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)

	ctxzap.Info(detached, "persisted")
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "chat_exchange", entries[0].ContextMap()["action"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)

	log, err := New("debug", true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}
