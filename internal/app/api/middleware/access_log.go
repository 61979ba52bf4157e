package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/financeplus/pkg/logctx"
)

// AccessLogMiddleware logs HTTP access using the request-scoped logger
// previously attached by RequestLoggerMiddleware.
func AccessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		// pick request logger if present
		l, ok := c.Get(logctx.GinLoggerKey)
		if !ok {
			return
		}
		base, ok := l.(*zap.SugaredLogger)
		if !ok || base == nil {
			return
		}
		// the context logger also carries user_id once Authenticate ran
		log := logctx.FromCtx(c.Request.Context(), base)
		log.Infow("http_access",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
