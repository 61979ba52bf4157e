package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var subscriptionOperationsMetric = &Metric{
	ID:          "subOps",
	Name:        "subscription_operations_total",
	Description: "Subscription lifecycle operations, partitioned by operation and result.",
	Type:        "counter_vec",
	Args:        []string{"op", "result"},
}

var subscriptionsByStatusMetric = &Metric{
	ID:          "subByStatus",
	Name:        "subscriptions_by_status",
	Description: "Current number of subscriptions by status.",
	Type:        "gauge_vec",
	Args:        []string{"status"},
}

var cacheRequestsMetric = &Metric{
	ID:          "cacheReq",
	Name:        "entitlement_cache_requests_total",
	Description: "Entitlement cache lookups, partitioned by result (hit, miss, error).",
	Type:        "counter_vec",
	Args:        []string{"result"},
}

var (
	subscriptionOperations = NewMetric(subscriptionOperationsMetric, "").(*prometheus.CounterVec)
	subscriptionsByStatus  = NewMetric(subscriptionsByStatusMetric, "").(*prometheus.GaugeVec)
	cacheRequests          = NewMetric(cacheRequestsMetric, "").(*prometheus.CounterVec)
	businessProcess        = NewMetric(MetricsBusinessProcess, "").(*prometheus.HistogramVec)

	registerOnce sync.Once
)

// MustRegisterBusiness registers the business collectors exactly once.
func MustRegisterBusiness(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(subscriptionOperations, subscriptionsByStatus, cacheRequests, businessProcess)
	})
}

// IncSubscriptionOperation counts one lifecycle operation; result is "ok" or an error kind.
func IncSubscriptionOperation(op, result string) {
	subscriptionOperations.WithLabelValues(op, result).Inc()
}

// SetSubscriptionsByStatus replaces the gauge values; statuses missing from counts are reset to zero.
func SetSubscriptionsByStatus(statuses []string, counts map[string]int64) {
	for _, status := range statuses {
		subscriptionsByStatus.WithLabelValues(status).Set(float64(counts[status]))
	}
}

func IncCacheRequest(result string) {
	cacheRequests.WithLabelValues(result).Inc()
}

// ObserveBusinessProcess records how long one operation took, in milliseconds.
func ObserveBusinessProcess(typ, subtype string, d time.Duration) {
	businessProcess.WithLabelValues(typ, subtype).Observe(float64(d.Milliseconds()))
}
