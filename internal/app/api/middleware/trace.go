package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fatflowers/financeplus/pkg/logctx"
	"github.com/fatflowers/financeplus/pkg/tool"
)

const traceHeader = "X-Request-ID"

// TraceMiddleware adds a trace ID to the request context.
// It reads X-Request-ID if provided by the client; otherwise generates a UUID.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = tool.GenerateUUIDV7()
		}

		c.Set(logctx.GinTraceIDKey, traceID)
		c.Request = c.Request.WithContext(logctx.WithTraceID(c.Request.Context(), traceID))
		c.Next()
	}
}
