package middleware

import (
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/futig/jarvis-backend/internal/telegram/render"
)

const (
	warningInterval   = 30 * time.Second
	inactiveThreshold = time.Hour
)

// userLimit tracks rate limit state for a single user
type userLimit struct {
	limiter       *rate.Limiter
	warningsSent  int
	lastWarningAt time.Time
	mu            sync.Mutex
}

// RateLimiterMiddleware implements token bucket rate limiting per user.
// Limiters of users idle for an hour are evicted.
type RateLimiterMiddleware struct {
	limits *cache.Cache
	mu     sync.Mutex
	every  rate.Limit
	burst  int
	logger *zap.Logger
	bot    Sender
	now    func() time.Time
}

func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burstSize int,
	logger *zap.Logger,
	bot Sender,
) *RateLimiterMiddleware {
	if burstSize <= 0 {
		burstSize = 1
	}
	return &RateLimiterMiddleware{
		limits: cache.New(inactiveThreshold, 10*time.Minute),
		every:  rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:  burstSize,
		logger: logger,
		bot:    bot,
		now:    time.Now,
	}
}

// Handle drops updates of users above their rate
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	userID, chatID := updateIDs(update)
	if userID == 0 {
		next(update)
		return
	}

	if !rl.allowRequest(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

func (rl *RateLimiterMiddleware) allowRequest(userID, chatID int64) bool {
	limit := rl.userLimit(userID)

	limit.mu.Lock()
	defer limit.mu.Unlock()

	now := rl.now()
	if limit.limiter.AllowN(now, 1) {
		limit.warningsSent = 0
		return true
	}

	if now.Sub(limit.lastWarningAt) > warningInterval {
		limit.warningsSent++
		limit.lastWarningAt = now
		rl.sendRateLimitWarning(chatID, limit.warningsSent)
	}
	return false
}

// userLimit returns the limiter of a user and extends its expiration
func (rl *RateLimiterMiddleware) userLimit(userID int64) *userLimit {
	key := strconv.FormatInt(userID, 10)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	limit, ok := rl.limits.Get(key)
	if !ok {
		limit = &userLimit{limiter: rate.NewLimiter(rl.every, rl.burst)}
	}
	rl.limits.SetDefault(key, limit)
	return limit.(*userLimit)
}

func (rl *RateLimiterMiddleware) sendRateLimitWarning(chatID int64, warningCount int) {
	text := render.MsgRateLimited
	if warningCount > 1 {
		text = render.MsgRateLimitedHard
	}

	if _, err := rl.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}
