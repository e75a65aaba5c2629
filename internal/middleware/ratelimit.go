package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a fixed-window, in-memory request counter keyed by client
// identifier. State is per-process; a multi-instance deployment rate-limits
// per instance.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	window  time.Duration
	max     int
	now     func() time.Time
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*rateLimitEntry),
		window:  window,
		max:     max,
		now:     time.Now,
	}
}

// Allow records one request for the identifier and reports whether it is
// within the window budget, along with the remaining budget and time until
// the window resets.
func (l *RateLimiter) Allow(identifier string) (allowed bool, remaining int, resetIn time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// Drop expired entries once the map grows large.
	if len(l.entries) > 10000 {
		for key, entry := range l.entries {
			if now.After(entry.resetAt) {
				delete(l.entries, key)
			}
		}
	}

	entry, ok := l.entries[identifier]
	if !ok || now.After(entry.resetAt) {
		l.entries[identifier] = &rateLimitEntry{count: 1, resetAt: now.Add(l.window)}
		return true, l.max - 1, l.window
	}

	if entry.count >= l.max {
		return false, 0, entry.resetAt.Sub(now)
	}

	entry.count++
	return true, l.max - entry.count, entry.resetAt.Sub(now)
}

// Middleware limits requests per client IP and sets X-RateLimit headers.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		allowed, remaining, resetIn := l.Allow(ip)

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(resetIn.Round(time.Second).Seconds())))

		if !allowed {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
