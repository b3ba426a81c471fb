package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/xiebiao/library/pkg/response"
)

// ErrCodeTooManyRequests 请求过于频繁
const ErrCodeTooManyRequests = 42900

// RateLimit 全局令牌桶限流
// rps<=0 时不限流
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			response.Abort(c, http.StatusTooManyRequests, ErrCodeTooManyRequests, "请求过于频繁，请稍后重试")
			return
		}
		c.Next()
	}
}
