package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meterly/backend/internal/interfaces/http/dto"
)

// RateLimiter is an in-memory fixed-window limiter. Each key gets a
// token budget that refills when its window elapses.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	tokens    int
	windowEnd time.Time
}

// NewRateLimiter builds a limiter allowing limit requests per window
// per key. A background goroutine evicts buckets whose window has long
// passed so idle keys do not accumulate.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go rl.evictStale()
	return rl
}

func (rl *RateLimiter) evictStale() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.Sub(b.windowEnd) > rl.window {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow consumes one token for key, reporting whether the request may
// proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, exists := rl.buckets[key]
	if !exists || !now.Before(b.windowEnd) {
		rl.buckets[key] = &bucket{
			tokens:    rl.limit - 1,
			windowEnd: now.Add(rl.window),
		}
		return true
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Remaining reports how many requests key has left in its current
// window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists || !time.Now().Before(b.windowEnd) {
		return rl.limit
	}
	return b.tokens
}

type rateLimitOptions struct {
	message       string
	setRetryAfter bool
}

// limitRequests is the shared middleware body. The key function
// decides the bucketing; callers tune the rejection shape.
func limitRequests(limiter *RateLimiter, keyFunc func(*gin.Context) string, opts rateLimitOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			if opts.setRetryAfter {
				c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited, opts.message, GetRequestID(c)))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))

		c.Next()
	}
}

// RateLimit limits all requests per client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limitRequests(limiter, (*gin.Context).ClientIP, rateLimitOptions{
		message: "Too many requests. Please try again later.",
	})
}

// AuthRateLimit limits authentication attempts per client IP. The key
// carries an auth prefix so exhausting the login budget never touches
// the general limiter, and blocked responses carry Retry-After.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return limitRequests(limiter, func(c *gin.Context) string {
		return "auth:" + c.ClientIP()
	}, rateLimitOptions{
		message:       "Too many authentication attempts. Please try again later.",
		setRetryAfter: true,
	})
}

// RateLimitByKey limits requests bucketed by a caller-supplied key
// function, for per-user rather than per-IP budgets.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return limitRequests(limiter, keyFunc, rateLimitOptions{
		message: "Too many requests. Please try again later.",
	})
}
