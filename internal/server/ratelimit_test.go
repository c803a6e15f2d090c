package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestRateLimiter_MinuteWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(2, 0)
	rl.now = clock.now

	require.NoError(t, rl.Allow("a"))
	require.NoError(t, rl.Allow("a"))
	err := rl.Allow("a")
	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "minute", rle.Window)
	assert.Equal(t, 2, rle.Limit)
	assert.Equal(t, time.Minute, rle.RetryAfter)

	require.NoError(t, rl.Allow("b"), "clients are independent")

	clock.t = clock.t.Add(time.Minute)
	assert.NoError(t, rl.Allow("a"))
	assert.Equal(t, 1, rl.Usage("a").MinuteCount)
}

func TestRateLimiter_DayWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(0, 3)
	rl.now = clock.now

	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Allow("a"))
		clock.t = clock.t.Add(2 * time.Minute)
	}
	err := rl.Allow("a")
	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "day", rle.Window)
	assert.Equal(t, 54*time.Minute, rle.RetryAfter)

	clock.t = time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC)
	assert.NoError(t, rl.Allow("a"))
	assert.Equal(t, 1, rl.Usage("a").DayCount)
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, Config{RateLimitEnabled: true, RequestsPerMinute: 2, RequestsPerDay: 100}, nil)
	h := s.Handler()

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/nutrition/text", strings.NewReader(`{"text":"나트륨 1mg"}`))
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("1.2.3.4").Code)
	assert.Equal(t, http.StatusOK, send("1.2.3.4").Code)
	w := send("1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "minute", w.Header().Get("X-RateLimit-Window"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, send("5.6.7.8").Code)

	hw := httptest.NewRecorder()
	h.ServeHTTP(hw, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, hw.Code, "health is not rate limited")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": " 9.9.9.9 , 1.1.1.1"}, "2.2.2.2:1", "9.9.9.9"},
		{"real ip", map[string]string{"X-Real-IP": "8.8.8.8"}, "2.2.2.2:1", "8.8.8.8"},
		{"remote", nil, "2.2.2.2:1234", "2.2.2.2"},
		{"remote without port", nil, "2.2.2.2", "2.2.2.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
