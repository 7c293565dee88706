package history

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps the recent conversation of every chat in memory. Entries expire
// after the TTL of inactivity and are trimmed to the newest maxChars runes.
type Store struct {
	cache    *cache.Cache
	maxChars int
	mu       sync.Mutex
}

func New(ttl time.Duration, maxChars int) *Store {
	return &Store{
		cache:    cache.New(ttl, 2*ttl),
		maxChars: maxChars,
	}
}

// Get returns the recent conversation of a chat
func (s *Store) Get(chatID int64) string {
	if v, ok := s.cache.Get(key(chatID)); ok {
		return v.(string)
	}
	return ""
}

// Append records one exchange and refreshes the chat expiration
func (s *Store) Append(chatID int64, user, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	if prev := s.Get(chatID); prev != "" {
		b.WriteString(prev)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(user)
	b.WriteString("\nAssistant: ")
	b.WriteString(reply)

	s.cache.SetDefault(key(chatID), trim(b.String(), s.maxChars))
}

func (s *Store) Clear(chatID int64) {
	s.cache.Delete(key(chatID))
}

// trim keeps the tail of text, starting at a line boundary when one exists
func trim(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	tail := string(runes[len(runes)-maxChars:])
	if i := strings.Index(tail, "\n"); i >= 0 && i < len(tail)-1 {
		return tail[i+1:]
	}
	return tail
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
