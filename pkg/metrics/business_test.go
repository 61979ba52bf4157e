package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestIncSubscriptionOperation(t *testing.T) {
	before := testutil.ToFloat64(subscriptionOperations.WithLabelValues("activate", "ok"))
	IncSubscriptionOperation("activate", "ok")
	require.Equal(t, before+1, testutil.ToFloat64(subscriptionOperations.WithLabelValues("activate", "ok")))
}

func TestSetSubscriptionsByStatus_ResetsMissing(t *testing.T) {
	SetSubscriptionsByStatus([]string{"active", "pending"}, map[string]int64{"active": 3, "pending": 1})
	SetSubscriptionsByStatus([]string{"active", "pending"}, map[string]int64{"active": 2})
	require.Equal(t, float64(2), testutil.ToFloat64(subscriptionsByStatus.WithLabelValues("active")))
	require.Equal(t, float64(0), testutil.ToFloat64(subscriptionsByStatus.WithLabelValues("pending")))
}

func TestMustRegisterBusiness_Once(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() {
		MustRegisterBusiness(reg)
		MustRegisterBusiness(reg)
	})
}

func TestObserveBusinessProcess(t *testing.T) {
	ObserveBusinessProcess("subscription", "extend", 120*time.Millisecond)
	require.Equal(t, 1, testutil.CollectAndCount(businessProcess.WithLabelValues("subscription", "extend").(prometheus.Histogram)))
}
