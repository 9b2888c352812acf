package middleware

import (
	"time"

	"github.com/PohSayKeong/fundl/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestId  = "X-Request-Id"
	ContextRequestId = "request_id"
)

// RequestId 为每个请求分配 id，沿用客户端传入的值
func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestId)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestId, id)
		c.Header(HeaderRequestId, id)
		c.Next()
	}
}

// AccessLog 每个请求结束后记录一条访问日志
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", c.GetString(ContextRequestId)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		log := logger.GetDefaultZapLogger().WithOptions(zap.AddCallerSkip(-2))
		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// CORS 允许浏览器跨域调用，身份令牌通过自定义请求头传递
func CORS(identityHeader string) gin.HandlerFunc {
	allowHeaders := "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, " + HeaderRequestId
	if identityHeader != "" {
		allowHeaders += ", " + identityHeader
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Expose-Headers", HeaderRequestId)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
