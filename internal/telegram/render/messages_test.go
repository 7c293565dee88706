package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "fits", text: "short", limit: 10, want: []string{"short"}},
		{name: "breaks on space", text: "aaaa bbbb cccc", limit: 10, want: []string{"aaaa bbbb", "cccc"}},
		{name: "prefers newline", text: "aa bb\ncc dd ee", limit: 10, want: []string{"aa bb", "cc dd ee"}},
		{name: "hard cut without breaks", text: "abcdefghij", limit: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "counts runes", text: "привет мир", limit: 6, want: []string{"привет", "мир"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitMessage(tt.text, tt.limit))
		})
	}
}

func TestSplitMessage_TelegramLimit(t *testing.T) {
	parts := SplitMessage(strings.Repeat("x", MaxMessageLength*2+1), 0)

	assert.Len(t, parts, 3)
	assert.Len(t, parts[0], MaxMessageLength)
}
