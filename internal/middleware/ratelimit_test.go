package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowWithinBudget(t *testing.T) {
	limiter := NewRateLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		allowed, _, _ := limiter.Allow("1.2.3.4")
		assert.True(t, allowed)
	}

	allowed, remaining, _ := limiter.Allow("1.2.3.4")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	limiter := NewRateLimiter(time.Minute, 1)

	allowed, _, _ := limiter.Allow("1.2.3.4")
	require.True(t, allowed)
	allowed, _, _ = limiter.Allow("1.2.3.4")
	require.False(t, allowed)

	allowed, _, _ = limiter.Allow("5.6.7.8")
	assert.True(t, allowed, "another client has its own budget")
}

func TestRateLimiterWindowReset(t *testing.T) {
	current := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(time.Minute, 1)
	limiter.now = func() time.Time { return current }

	allowed, _, _ := limiter.Allow("1.2.3.4")
	require.True(t, allowed)
	allowed, _, _ = limiter.Allow("1.2.3.4")
	require.False(t, allowed)

	current = current.Add(61 * time.Second)
	allowed, remaining, _ := limiter.Allow("1.2.3.4")
	assert.True(t, allowed, "budget restored after the window expires")
	assert.Equal(t, 0, remaining)
}

func TestRateLimiterMiddleware(t *testing.T) {
	limiter := NewRateLimiter(time.Minute, 1)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "1.2.3.4:51234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}
