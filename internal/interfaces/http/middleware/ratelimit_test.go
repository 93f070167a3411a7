package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour, 0)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("a"), "request %d", i)
	}
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys have separate buckets")
	assert.Equal(t, 0, rl.Remaining("a"))
	assert.Equal(t, 3, rl.Remaining("unseen"))

	rl.Stop()
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour, 0)
	defer rl.Stop()

	r := gin.New()
	r.Use(RateLimit(rl))
	r.GET("/", okHandler)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrCodeRateLimited, decodeEnvelope(t, w).Code)
}

func TestRateLimitByKey(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, 0)
	defer rl.Stop()

	r := gin.New()
	r.Use(RateLimitByKey(rl, func(c *gin.Context) string { return c.GetHeader("X-Key") }))
	r.GET("/", okHandler)

	req := func(key string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Key", key)
		return req
	}
	assert.Equal(t, http.StatusOK, serve(r, req("one")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, req("one")).Code)
	assert.Equal(t, http.StatusOK, serve(r, req("two")).Code)
}
