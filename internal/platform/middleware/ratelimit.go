package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// MsgRateLimitExceeded is the body sent with 429 responses.
const MsgRateLimitExceeded = "Rate limit exceeded. Please try again later."

const (
	defaultCleanupInterval = 5 * time.Minute
	defaultVisitorIdle     = 10 * time.Minute
)

// RateLimiter holds one token bucket per client IP.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit // requests per second
	burst    int        // maximum burst size

	cleanupInterval time.Duration
	idle            time.Duration
}

// visitor holds a rate limiter for a specific IP
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing rps requests per second with
// bursts up to burst. Idle visitors are evicted until ctx is done.
func NewRateLimiter(ctx context.Context, rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors:        make(map[string]*visitor),
		rate:            rate.Limit(rps),
		burst:           burst,
		cleanupInterval: defaultCleanupInterval,
		idle:            defaultVisitorIdle,
	}

	go rl.cleanupLoop(ctx)

	return rl
}

// getVisitor returns the rate limiter for a specific IP, creating one if needed
func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

// evictIdle removes visitors not seen since now minus the idle window.
func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idle {
			delete(rl.visitors, ip)
		}
	}
}

// visitorCount returns the number of tracked clients.
func (rl *RateLimiter) visitorCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Middleware returns a gin middleware that answers 429 once a client exceeds its budget.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": MsgRateLimitExceeded})
			return
		}
		c.Next()
	}
}
