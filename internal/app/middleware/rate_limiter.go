package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/response"
)

// TokenBucket 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64 // 每秒填充的令牌数
	capacity   int
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket 创建满桶
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow 尝试获取一个令牌
func (tb *TokenBucket) Allow() bool {
	return tb.allowAt(time.Now())
}

func (tb *TokenBucket) allowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.tokens += elapsed * tb.rate
		tb.lastRefill = now
	}
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimiterConfig 限流器配置
type RateLimiterConfig struct {
	Rate       float64                   // 每秒允许的请求数
	Burst      int                       // 允许的突发请求数
	ExpiryTime time.Duration             // 空闲多久后回收
	KeyFunc    func(*gin.Context) string // 为空时按客户端IP
}

// DefaultRateLimiterConfig 默认限流器配置
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:       10,
	Burst:      20,
	ExpiryTime: 10 * time.Minute,
}

// limiterStore 每个中间件实例独立的令牌桶集合
type limiterStore struct {
	cfg      RateLimiterConfig
	mu       sync.Mutex
	buckets  map[string]*TokenBucket
	lastSeen map[string]time.Time
	lastGC   time.Time
}

func newLimiterStore(cfg RateLimiterConfig) *limiterStore {
	return &limiterStore{
		cfg:      cfg,
		buckets:  make(map[string]*TokenBucket),
		lastSeen: make(map[string]time.Time),
		lastGC:   time.Now(),
	}
}

func (s *limiterStore) get(key string, now time.Time) *TokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 顺带回收长时间空闲的桶
	if s.cfg.ExpiryTime > 0 && now.Sub(s.lastGC) > s.cfg.ExpiryTime {
		for k, seen := range s.lastSeen {
			if now.Sub(seen) > s.cfg.ExpiryTime {
				delete(s.buckets, k)
				delete(s.lastSeen, k)
			}
		}
		s.lastGC = now
	}

	bucket, ok := s.buckets[key]
	if !ok {
		bucket = NewTokenBucket(s.cfg.Rate, s.cfg.Burst)
		s.buckets[key] = bucket
	}
	s.lastSeen[key] = now
	return bucket
}

// RateLimiter 创建限流中间件，超限返回 429
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	cfg := DefaultRateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	store := newLimiterStore(cfg)
	return func(c *gin.Context) {
		now := time.Now()
		if !store.get(cfg.KeyFunc(c), now).allowAt(now) {
			response.Fail(c, code.ErrTooManyRequests, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPRateLimiter 按IP限流
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{Rate: rate, Burst: burst, ExpiryTime: DefaultRateLimiterConfig.ExpiryTime})
}

// CustomRateLimiter 自定义键限流
func CustomRateLimiter(rate float64, burst int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:       rate,
		Burst:      burst,
		ExpiryTime: DefaultRateLimiterConfig.ExpiryTime,
		KeyFunc:    keyFunc,
	})
}
