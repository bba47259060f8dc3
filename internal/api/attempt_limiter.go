package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// attemptLimiter blocks a key once it has collected limit failures within
// the trailing window.
type attemptLimiter struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	failures map[string][]time.Time
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:    limit,
		window:   window,
		failures: make(map[string][]time.Time),
	}
}

func (limiter *attemptLimiter) blocked(key string, now time.Time) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	return len(limiter.recentLocked(key, now)) >= limiter.limit
}

func (limiter *attemptLimiter) recordFailure(key string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.failures[key] = append(limiter.recentLocked(key, now), now)
}

func (limiter *attemptLimiter) clear(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	delete(limiter.failures, key)
}

// recentLocked drops failures older than the window and returns the rest.
func (limiter *attemptLimiter) recentLocked(key string, now time.Time) []time.Time {
	cutoff := now.Add(-limiter.window)
	kept := limiter.failures[key][:0]
	for _, at := range limiter.failures[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(limiter.failures, key)
		return nil
	}
	limiter.failures[key] = kept
	return kept
}

// loginLimiterKey scopes failures to the client address and the phone tried.
func loginLimiterKey(c *fiber.Ctx, phone string) string {
	ip := strings.TrimSpace(c.IP())
	if ip == "" {
		ip = "unknown"
	}
	return ip + "|" + strings.TrimSpace(phone)
}
