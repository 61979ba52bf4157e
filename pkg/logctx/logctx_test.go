package logctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromCtx_EnrichesWithTraceAndUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = WithUserID(ctx, "user-1")
	FromCtx(ctx, base).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, "trace-1", fields["trace_id"])
	require.Equal(t, "user-1", fields["user_id"])
}

func TestWithUserID_RederivesStoredLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	ctx := WithLogger(context.Background(), base.With("trace_id", "t"))
	ctx = WithUserID(ctx, "u")
	FromCtx(ctx, zap.NewNop().Sugar()).Info("x")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "u", logs.All()[0].ContextMap()["user_id"])
	require.Equal(t, "u", UserID(ctx))
}

func TestFromCtx_NilContextReturnsBase(t *testing.T) {
	base := zap.NewNop().Sugar()
	require.Same(t, base, FromCtx(nil, base))
}
