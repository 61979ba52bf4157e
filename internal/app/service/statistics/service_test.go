package statistics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/internal/platform/db/dbtest"
	"github.com/fatflowers/financeplus/pkg/tool"
	"github.com/fatflowers/financeplus/pkg/types"
)

func TestSubscriptionStats(t *testing.T) {
	conn := dbtest.Open(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	pay := func(amount, currency string, status types.PaymentStatus) models.PaymentRecord {
		return models.PaymentRecord{ID: tool.GenerateUUIDV7(), Amount: decimal.RequireFromString(amount), Currency: currency, Method: types.PaymentMethodPix, Status: status, ProcessedAt: now}
	}
	mk := func(user string, plan types.PlanID, status types.SubscriptionStatus, source string, created time.Time, payments ...models.PaymentRecord) *models.Subscription {
		meta := datatypes.JSONMap{}
		if source != "" {
			meta[types.MetadataSource] = source
		}
		return &models.Subscription{
			ID: tool.GenerateUUIDV7(), UserID: user, PlanID: plan, Status: status, Interval: types.IntervalMonth,
			Limits: datatypes.NewJSONType(types.Limits{}), Features: datatypes.JSONSlice[string]{},
			PaymentHistory: datatypes.JSONSlice[models.PaymentRecord](payments), Metadata: meta,
			Version: 1, CreatedAt: created, UpdatedAt: created,
		}
	}
	rows := []*models.Subscription{
		mk("u1", types.PlanPro, types.SubscriptionStatusActive, types.SourceUserRequest, now.AddDate(0, 0, -2),
			pay("29.90", "BRL", types.PaymentStatusSucceeded), pay("29.90", "BRL", types.PaymentStatusSucceeded)),
		mk("u2", types.PlanEnterprise, types.SubscriptionStatusCancelled, types.SourceAdminManual, now.AddDate(0, -3, 0),
			pay("99.90", "BRL", types.PaymentStatusSucceeded), pay("10", "USD", types.PaymentStatusSucceeded), pay("5", "USD", "failed")),
		mk("u2", types.PlanFree, types.SubscriptionStatusActive, types.SourceAutoFree, now.AddDate(0, 0, -1)),
		mk("u3", types.PlanFree, types.SubscriptionStatusActive, "", now.AddDate(0, -2, 0)),
	}
	require.NoError(t, conn.Create(&rows).Error)

	svc := New(conn, zap.NewNop().Sugar())
	svc.now = func() time.Time { return now }
	stats, err := svc.SubscriptionStats(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(4), stats.Total)
	require.Equal(t, int64(3), stats.ByStatus["active"])
	require.Equal(t, int64(1), stats.ByStatus["cancelled"])
	require.Equal(t, int64(0), stats.ByStatus["pending"])
	require.Equal(t, map[string]int64{"pro": 1, "enterprise": 1, "free": 2}, stats.ByPlan)
	require.Equal(t, map[string]int64{types.SourceUserRequest: 1, types.SourceAdminManual: 1, types.SourceAutoFree: 1, unknownSource: 1}, stats.BySource)
	require.Equal(t, int64(2), stats.CreatedLast30Days)
	require.True(t, stats.Revenue["BRL"].Equal(decimal.RequireFromString("159.70")), "BRL %s", stats.Revenue["BRL"])
	require.True(t, stats.Revenue["USD"].Equal(decimal.NewFromInt(10)), "USD %s", stats.Revenue["USD"])
}
