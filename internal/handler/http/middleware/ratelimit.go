package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/handler/http/response"
	"golang.org/x/time/rate"
)

// maxLimiters is the most callers tracked at once. Past it idle entries are
// dropped first, then the least recently seen.
const maxLimiters = 10000

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per caller. Authenticated requests are
// keyed by email, the rest by client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	capacity int
}

func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		capacity: maxLimiters,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= rl.capacity {
			rl.evictIdle(now)
		}
		if len(rl.limiters) >= rl.capacity {
			rl.evictOldest()
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// evictIdle must be called with mu held.
func (rl *RateLimiter) evictIdle(now time.Time) {
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.idleTTL {
			delete(rl.limiters, key)
		}
	}
}

// evictOldest must be called with mu held.
func (rl *RateLimiter) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, entry := range rl.limiters {
		if !found || entry.lastSeen.Before(oldest) {
			oldestKey, oldest, found = key, entry.lastSeen, true
		}
	}
	if found {
		delete(rl.limiters, oldestKey)
	}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if p := auth.PrincipalFromContext(r.Context()); p != nil {
			key = "user:" + p.Email
		}

		if !rl.getLimiter(key).Allow() {
			slog.Warn("rate limit exceeded", "key", key, "path", r.URL.Path, "method", r.Method)
			w.Header().Set("Retry-After", "1")
			response.TooManyRequests(w, "Too many requests")
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
