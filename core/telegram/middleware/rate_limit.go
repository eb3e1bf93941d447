package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/supportbot/core/logger"
	tghelpers "github.com/m3rciful/supportbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now overrides the clock in tests.
	Now func() time.Time
}

// UpdateKind classifies an update for rate-limit exclusions.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil && (upd.Message.Photo != nil || upd.Message.Video != nil):
		return "media"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// userLimiter remembers when each user was last let through. Entries older
// than interval can no longer limit anyone and are pruned at most once per
// interval, so the map only holds recently active users.
type userLimiter struct {
	mu        sync.Mutex
	interval  time.Duration
	lastSeen  map[int64]time.Time
	lastPrune time.Time
}

func newUserLimiter(interval time.Duration) *userLimiter {
	return &userLimiter{interval: interval, lastSeen: make(map[int64]time.Time)}
}

// allow reports whether userID may pass at ts and records the pass.
func (l *userLimiter) allow(userID int64, ts time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ts.Sub(l.lastPrune) >= l.interval {
		for id, seen := range l.lastSeen {
			if ts.Sub(seen) >= l.interval {
				delete(l.lastSeen, id)
			}
		}
		l.lastPrune = ts
	}

	if last, ok := l.lastSeen[userID]; ok && ts.Sub(last) < l.interval {
		return false
	}
	l.lastSeen[userID] = ts
	return true
}

func (l *userLimiter) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastSeen)
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	limiter := newUserLimiter(opts.Interval)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}

			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			if !limiter.allow(user.ID, now()) {
				logger.Warn(tghelpers.BuildContext(c), logger.ComponentTG, "tg.rate_limit",
					slog.String("status", "rate_limited"),
					slog.String("kind", kind),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
