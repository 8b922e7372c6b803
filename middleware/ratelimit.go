package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// maxTrackedIPs bounds the limiter map under many distinct source addresses.
const maxTrackedIPs = 10000

// RateLimiter is a per-client-IP token bucket limiter.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	cleanup  *time.Ticker
	stopChan chan struct{}
}

// NewRateLimiter starts a limiter allowing rps requests per second per IP with
// the given burst. Call Stop on shutdown.
func NewRateLimiter(rps, burst int) *RateLimiter {
	l := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		cleanup:  time.NewTicker(time.Minute),
		stopChan: make(chan struct{}),
	}
	go l.cleanupRoutine()
	return l
}

// Allow reports whether a request from ip may proceed.
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[ip]
	if !ok {
		if len(l.limiters) >= maxTrackedIPs {
			l.mu.Unlock()
			return false
		}
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[ip] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// Middleware rejects over-limit requests with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}

// Tracked returns the number of client IPs currently held.
func (l *RateLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (l *RateLimiter) Stop() {
	l.cleanup.Stop()
	select {
	case <-l.stopChan:
	default:
		close(l.stopChan)
	}
}

func (l *RateLimiter) cleanupRoutine() {
	for {
		select {
		case <-l.cleanup.C:
			l.evictIdle()
		case <-l.stopChan:
			return
		}
	}
}

// evictIdle drops limiters whose bucket has refilled, i.e. idle clients.
func (l *RateLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, limiter := range l.limiters {
		if limiter.Tokens() >= float64(l.burst) {
			delete(l.limiters, ip)
		}
	}
}
