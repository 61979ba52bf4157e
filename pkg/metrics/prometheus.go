package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP request metrics, partitioned by status code, method, route template
// and the X-Referer header.
var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "route", "ref"},
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "route", "ref"},
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "route", "ref"},
}

var reqSz = &Metric{
	ID:          "reqSz",
	Name:        "req_sz_bytes",
	Description: "The HTTP request sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "route", "ref"},
}

var httpMetricDefs = []*Metric{reqCnt, reqDur, resSz, reqSz}

const DefaultMetricsPath = "/metrics"

// RouteLabelFn maps a request to its "route" label.
type RouteLabelFn func(c *gin.Context) string

// RouteTemplate labels a request with its matched route, e.g.
// "/api/v1/subscriptions/:id", so path parameters do not create new series.
// Unmatched requests fall back to the raw path.
func RouteTemplate(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// HTTPMetrics records request metrics for a gin engine and serves the
// gathered registry on its own router.
type HTTPMetrics struct {
	reqCnt       *prometheus.CounterVec
	reqDur       *prometheus.HistogramVec
	reqSz, resSz *prometheus.SummaryVec

	path       string
	routeLabel RouteLabelFn
	gatherer   prometheus.Gatherer
}

type HTTPMetricsOptions struct {
	Subsystem   string
	MetricsPath string
	RouteLabel  RouteLabelFn
	// Registerer and Gatherer default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewHTTPMetrics registers the request collectors. Collectors already
// registered by an earlier instance are reused.
func NewHTTPMetrics(opts HTTPMetricsOptions) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		path:       opts.MetricsPath,
		routeLabel: opts.RouteLabel,
		gatherer:   opts.Gatherer,
	}
	if m.path == "" {
		m.path = DefaultMetricsPath
	}
	if m.routeLabel == nil {
		m.routeLabel = RouteTemplate
	}
	if m.gatherer == nil {
		m.gatherer = prometheus.DefaultGatherer
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	for _, def := range httpMetricDefs {
		collector := NewMetric(def, opts.Subsystem)
		if err := reg.Register(collector); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, fmt.Errorf("failed to register %s: %w", def.Name, err)
			}
			collector = are.ExistingCollector
		}
		switch def {
		case reqCnt:
			m.reqCnt = collector.(*prometheus.CounterVec)
		case reqDur:
			m.reqDur = collector.(*prometheus.HistogramVec)
		case resSz:
			m.resSz = collector.(*prometheus.SummaryVec)
		case reqSz:
			m.reqSz = collector.(*prometheus.SummaryVec)
		}
	}
	return m, nil
}

func (m *HTTPMetrics) Path() string {
	return m.path
}

// Middleware observes every request handled after it in the chain.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqSize := computeApproximateRequestSize(c.Request)

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		route := m.routeLabel(c)
		ref := c.Request.Header.Get(RefererKey)

		m.reqDur.WithLabelValues(status, c.Request.Method, route, ref).Observe(MillisecondsSince(start))
		m.reqCnt.WithLabelValues(status, c.Request.Method, route, ref).Inc()
		m.reqSz.WithLabelValues(status, c.Request.Method, route, ref).Observe(float64(reqSize))
		m.resSz.WithLabelValues(status, c.Request.Method, route, ref).Observe(float64(c.Writer.Size()))
	}
}

// Router serves the gathered metrics on the metrics path. It is meant for a
// listener separate from the API so scrapes stay out of the access log.
func (m *HTTPMetrics) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(m.path, prometheusHandler(m.gatherer))
	return r
}
