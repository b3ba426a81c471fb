package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// HeaderRequestID 请求ID响应头，上游已带时沿用
	HeaderRequestID = "X-Request-ID"

	ctxKeyRequestID = "request_id"

	slowRequestThreshold = 3 * time.Second
)

// Logger 请求日志中间件
// 1. 生成或沿用请求ID，写入Context和响应头
// 2. 记录方法、路径、状态码、耗时、客户端IP
// 3. 5xx记Error，4xx记Warn，其余记Info；慢请求额外告警
func Logger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ctxKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}
		log.Log(level, "request", fields...)

		if latency > slowRequestThreshold {
			log.Warn("慢请求", zap.String("request_id", requestID), zap.String("path", c.Request.URL.Path), zap.Duration("latency", latency))
		}
	}
}

// GetRequestID 获取当前请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}
