package server

import (
	"context"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/financeplus/pkg/config"
	"github.com/fatflowers/financeplus/pkg/metrics"
)

func newTestMetrics(t *testing.T) *metrics.HTTPMetrics {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewHTTPMetrics(metrics.HTTPMetricsOptions{Registerer: reg, Gatherer: reg})
	require.NoError(t, err)
	return m
}

func TestRunMetricsServer_StartsAndStops(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	runMetricsServer(lc, zap.NewNop().Sugar(), &cfgpkg.Config{MetricsAddr: "127.0.0.1:0"}, newTestMetrics(t))
	lc.RequireStart().RequireStop()
}

func TestRunMetricsServer_BindFailureFailsStart(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	lc := fxtest.NewLifecycle(t)
	runMetricsServer(lc, zap.NewNop().Sugar(), &cfgpkg.Config{MetricsAddr: busy.Addr().String()}, newTestMetrics(t))
	require.Error(t, lc.Start(context.Background()))
}

func TestRunMetricsServer_DisabledWithoutAddr(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	runMetricsServer(lc, zap.NewNop().Sugar(), &cfgpkg.Config{}, newTestMetrics(t))
	lc.RequireStart().RequireStop()
}
