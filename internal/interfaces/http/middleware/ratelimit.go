package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*visitor
	limit    rate.Limit
	burst    int
	requests int
	idleTTL  time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requests per window with the given burst, refilled
// continuously. A burst below 1 defaults to requests.
func NewRateLimiter(requests int, window time.Duration, burst int) *RateLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if burst < 1 {
		burst = requests
	}
	rl := &RateLimiter{
		clients:  make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    burst,
		requests: requests,
		idleTTL:  2 * window,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.clients {
				if now.Sub(v.lastSeen) > rl.idleTTL {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) visitor(key string) *visitor {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.clients[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = v
	}
	v.lastSeen = time.Now()
	return v
}

// Allow takes a token for key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.visitor(key).limiter.Allow()
}

// Remaining returns the whole tokens left for key
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	v, ok := rl.clients[key]
	rl.mu.Unlock()
	if !ok {
		return rl.burst
	}
	return max(int(math.Floor(v.limiter.Tokens())), 0)
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.requests))

		if !limiter.Allow(key) {
			retry := time.Second
			if limiter.limit > 0 {
				retry = time.Duration(float64(time.Second) / float64(limiter.limit))
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(max(int(math.Ceil(retry.Seconds())), 1)))
			abortWithError(c, dto.ErrCodeRateLimited)
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
