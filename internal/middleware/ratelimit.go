package middleware

import (
	"strconv"
	"sync"

	"MedGuard/internal/api/response"
	"MedGuard/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxLimiters = 10000

var errTooManyRequests = apperr.TooManyRequests("请求过于频繁，请稍后再试")

// RateLimiter 按调用方（用户ID或IP）限流
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	logger   *logrus.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(rps float64, burst int, logger *logrus.Logger) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		// 超过上限时整体重置
		if len(rl.limiters) >= maxLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Handler 限流中间件，超限返回 429
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if claims, ok := CurrentClaims(c); ok {
			key = "user:" + strconv.FormatUint(claims.ID, 10)
		}
		if !rl.limiter(key).Allow() {
			rl.logger.WithFields(logrus.Fields{"key": key, "path": c.Request.URL.Path}).Warn("rate limit exceeded")
			response.AbortError(c, errTooManyRequests)
			return
		}
		c.Next()
	}
}
