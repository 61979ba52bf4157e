package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/financeplus/pkg/logctx"
)

func TestTraceAndAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(zap.New(core).Sugar()), AccessLogMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.Request = c.Request.WithContext(logctx.WithUserID(c.Request.Context(), "u1"))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(traceHeader, "trace-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "trace-123", w.Header().Get(traceHeader))

	entries := logs.FilterMessage("http_access").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "trace-123", fields["trace_id"])
	require.Equal(t, "u1", fields["user_id"])
	require.Equal(t, "/ping", fields["path"])
	require.EqualValues(t, http.StatusNoContent, fields["status"])
}

func TestTraceMiddleware_GeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(zap.NewNop().Sugar()))
	r.GET("/", func(c *gin.Context) {
		require.Equal(t, c.GetString(logctx.GinTraceIDKey), logctx.TraceID(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, w.Header().Get(traceHeader), 36)
}
