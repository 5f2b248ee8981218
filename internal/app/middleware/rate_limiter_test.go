package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(1, 2)
	now := tb.lastRefill

	assert.True(t, tb.allowAt(now))
	assert.True(t, tb.allowAt(now))
	assert.False(t, tb.allowAt(now))

	assert.False(t, tb.allowAt(now.Add(500*time.Millisecond)))
	assert.True(t, tb.allowAt(now.Add(time.Second)))

	// 容量封顶
	later := now.Add(time.Hour)
	assert.True(t, tb.allowAt(later))
	assert.True(t, tb.allowAt(later))
	assert.False(t, tb.allowAt(later))
}

func TestRateLimiterPerKey(t *testing.T) {
	r := gin.New()
	r.Use(CustomRateLimiter(0.001, 2, func(c *gin.Context) string {
		return c.GetHeader("X-User")
	}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	hit := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-User", user)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("a"))
	assert.Equal(t, http.StatusOK, hit("a"))
	assert.Equal(t, http.StatusTooManyRequests, hit("a"))
	assert.Equal(t, http.StatusOK, hit("b"))
}

func TestLimiterStoreCollectsIdleBuckets(t *testing.T) {
	store := newLimiterStore(RateLimiterConfig{Rate: 1, Burst: 1, ExpiryTime: time.Minute})
	start := time.Now()

	store.get("idle", start)
	store.get("busy", start.Add(90*time.Second))
	store.get("busy", start.Add(2*time.Minute))

	_, idle := store.buckets["idle"]
	_, busy := store.buckets["busy"]
	assert.False(t, idle)
	assert.True(t, busy)
}
