package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter counts requests per client over a one-minute window and a
// calendar day.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	requestsPerDay    int

	clients map[string]*ClientUsage
	now     func() time.Time
}

// ClientUsage tracks usage for one client IP.
type ClientUsage struct {
	MinuteCount int
	MinuteStart time.Time
	DayCount    int
	DayStart    time.Time
}

// NewRateLimiter creates a limiter. A limit of zero disables that window.
func NewRateLimiter(requestsPerMinute, requestsPerDay int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerDay:    requestsPerDay,
		clients:           make(map[string]*ClientUsage),
		now:               time.Now,
	}
}

// Allow records a request from clientID, or returns a *RateLimitError when a
// window is exhausted. Rejected requests are not counted.
func (rl *RateLimiter) Allow(clientID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &ClientUsage{MinuteStart: now, DayStart: startOfDay(now)}
		rl.clients[clientID] = usage
	}

	if now.Sub(usage.MinuteStart) >= time.Minute {
		usage.MinuteCount = 0
		usage.MinuteStart = now
	}
	if day := startOfDay(now); !day.Equal(usage.DayStart) {
		usage.DayCount = 0
		usage.DayStart = day
	}

	if rl.requestsPerMinute > 0 && usage.MinuteCount >= rl.requestsPerMinute {
		return &RateLimitError{
			Window:     "minute",
			Limit:      rl.requestsPerMinute,
			RetryAfter: time.Minute - now.Sub(usage.MinuteStart),
		}
	}
	if rl.requestsPerDay > 0 && usage.DayCount >= rl.requestsPerDay {
		return &RateLimitError{
			Window:     "day",
			Limit:      rl.requestsPerDay,
			RetryAfter: usage.DayStart.AddDate(0, 0, 1).Sub(now),
		}
	}

	usage.MinuteCount++
	usage.DayCount++
	return nil
}

// Usage returns a copy of the counters for clientID.
func (rl *RateLimiter) Usage(clientID string) ClientUsage {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if u, ok := rl.clients[clientID]; ok {
		return *u
	}
	return ClientUsage{}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Window     string        // "minute" or "day"
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)",
		e.Window, e.Limit, e.RetryAfter.Round(time.Second))
}
