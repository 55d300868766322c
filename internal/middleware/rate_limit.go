package middleware

import (
	"sync"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// TokenBucket 令牌桶限流器
type TokenBucket struct {
	capacity   int64      // 桶容量
	tokens     int64      // 当前令牌数
	refillRate int64      // 每秒补充的令牌数
	lastRefill time.Time  // 上次补充时间
	mu         sync.Mutex // 互斥锁
	now        func() time.Time
}

// NewTokenBucket 创建令牌桶
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow 检查是否允许请求
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	// 按整秒补充令牌
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int64(elapsed.Seconds()) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimitMiddleware 限流中间件，name 只用于日志
func RateLimitMiddleware(name string, bucket *TokenBucket) iris.Handler {
	return func(ctx iris.Context) {
		if !bucket.Allow() {
			zap.L().Warn("请求被限流", zap.String("limiter", name), zap.String("ip", ctx.RemoteAddr()))
			ctx.StopWithJSON(iris.StatusTooManyRequests, iris.Map{
				"message": "Too many requests, please try again later",
				"success": false,
			})
			return
		}
		ctx.Next()
	}
}

var (
	orderRateLimiter  = NewTokenBucket(20, 10)
	uploadRateLimiter = NewTokenBucket(10, 2)
)

// OrderRateLimit 下单接口限流
func OrderRateLimit() iris.Handler {
	return RateLimitMiddleware("order", orderRateLimiter)
}

// UploadRateLimit 图片上传限流
func UploadRateLimit() iris.Handler {
	return RateLimitMiddleware("upload", uploadRateLimiter)
}
