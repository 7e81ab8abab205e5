package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/palette-api/internal/api/shared"
	"github.com/phrazzld/palette-api/internal/config"
	"github.com/phrazzld/palette-api/internal/platform/logger"
	"golang.org/x/time/rate"
)

// clientLimiter is the token bucket of one client IP.
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter limits requests per client IP.
// Idle entries are evicted by a background goroutine; call Stop to end it.
type RateLimiter struct {
	limit           rate.Limit
	burst           int
	cleanupInterval time.Duration

	mu       sync.RWMutex
	limiters map[string]*clientLimiter
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewLoginRateLimiter creates the limiter guarding the login endpoint.
func NewLoginRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return NewRateLimiter(rate.Limit(float64(cfg.LoginPerMinute)/60.0), cfg.LoginBurst, cfg.CleanupInterval)
}

// NewRateLimiter creates a RateLimiter allowing limit requests per second
// with the given burst per client IP.
func NewRateLimiter(limit rate.Limit, burst int, cleanupInterval time.Duration) *RateLimiter {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	rl := &RateLimiter{
		limit:           limit,
		burst:           burst,
		cleanupInterval: cleanupInterval,
		limiters:        make(map[string]*clientLimiter),
		now:             time.Now,
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the background cleanup. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !rl.limiterFor(ip).Allow() {
			logger.FromContext(r.Context()).Warn("rate limit exceeded",
				"client_ip", ip,
				"path", r.URL.Path)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rl.limit)))
			shared.RespondWithError(w, r, http.StatusTooManyRequests, shared.CodeRateLimited, "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.RLock()
	cl, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		cl.lastAccess = rl.now()
		rl.mu.Unlock()
		return cl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// another request may have created it meanwhile
	if cl, exists := rl.limiters[key]; exists {
		cl.lastAccess = rl.now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[key] = &clientLimiter{limiter: limiter, lastAccess: rl.now()}
	return limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops clients idle for more than two cleanup intervals.
func (rl *RateLimiter) cleanup() {
	ttl := rl.cleanupInterval * 2
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}

// retryAfterSeconds estimates the wait until one token is refilled.
func retryAfterSeconds(limit rate.Limit) int {
	if limit <= 0 {
		return 60
	}
	secs := int(math.Ceil(1.0 / float64(limit)))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// clientIP returns the host part of RemoteAddr, which chi's RealIP
// middleware has already replaced with the forwarded address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
