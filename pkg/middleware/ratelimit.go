package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/ratelimit"
)

// KeyFunc 取请求的限流 key
type KeyFunc func(c *gin.Context) string

// ByClientIP 每个客户端 IP 一个桶
func ByClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// ByRoute 每个客户端 IP 在每个路由模板上各一个桶，购物车写入不占用浏览配额
func ByRoute(c *gin.Context) string {
	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	return c.ClientIP() + ":" + c.Request.Method + ":" + path
}

// RateLimitMiddleware 限流中间件，key 为 nil 时按客户端 IP；限流器故障时放行
func RateLimitMiddleware(limiter ratelimit.RateLimiter, limit ratelimit.Limit, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = ByClientIP
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		res, err := limiter.Allow(ctx, key(c), limit)
		if err != nil {
			logger.Warn(ctx, "rate limiter unavailable", "path", c.Request.URL.Path, "error", err)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(int64(res.ResetAfter/time.Second), 10))
		if res.Allowed {
			c.Next()
			return
		}

		h.Set("Retry-After", strconv.FormatInt(int64(res.RetryAfter/time.Second)+1, 10))
		logger.Info(ctx, "request rate limited", "path", c.FullPath(), "retry_after", res.RetryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many requests",
			"retry_after": res.RetryAfter.String(),
		})
	}
}
