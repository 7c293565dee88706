package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_AppendAndGet(t *testing.T) {
	s := New(time.Hour, 1000)

	assert.Empty(t, s.Get(1))

	s.Append(1, "hi", "Hello, boss.")
	s.Append(1, "how are you", "Operational.")
	s.Append(2, "other chat", "Noted.")

	assert.Equal(t, "User: hi\nAssistant: Hello, boss.\nUser: how are you\nAssistant: Operational.", s.Get(1))
	assert.Equal(t, "User: other chat\nAssistant: Noted.", s.Get(2))
}

func TestStore_TrimKeepsNewest(t *testing.T) {
	s := New(time.Hour, 60)

	s.Append(1, "first question", "first answer")
	s.Append(1, "second question", "second answer")

	got := s.Get(1)
	assert.LessOrEqual(t, len([]rune(got)), 60)
	assert.True(t, strings.HasSuffix(got, "Assistant: second answer"))
	assert.NotContains(t, got, "first question")
}

func TestStore_Clear(t *testing.T) {
	s := New(time.Hour, 100)
	s.Append(1, "a", "b")

	s.Clear(1)

	assert.Empty(t, s.Get(1))
}

func TestStore_Expires(t *testing.T) {
	s := New(20*time.Millisecond, 100)
	s.Append(1, "a", "b")

	assert.Eventually(t, func() bool { return s.Get(1) == "" }, time.Second, 10*time.Millisecond)
}
