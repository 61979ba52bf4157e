package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestComputeApproximateRequestSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/v1/entitlements", nil)
	req.Header.Set("Authorization", "Bearer x")
	want := len("/api/v1/entitlements") + len("GET") + len("HTTP/1.1") +
		len("Authorization") + len("Bearer x") + len("example.com")
	require.Equal(t, want, computeApproximateRequestSize(req))
}

func TestMillisecondsSince(t *testing.T) {
	require.GreaterOrEqual(t, MillisecondsSince(time.Now().Add(-50*time.Millisecond)), float64(50))
}

func TestPrometheusHandler_ServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET(DefaultMetricsPath, prometheusHandler(prometheus.DefaultGatherer))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, DefaultMetricsPath, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}
