package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/service/statistics"
	"github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/app/service/user"
	"github.com/fatflowers/financeplus/internal/app/store"
	"github.com/fatflowers/financeplus/internal/platform/db"
	"github.com/fatflowers/financeplus/pkg/types"
)

// useTempDB points the config at a fresh SQLite file.
func useTempDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subscriptions.db")
	t.Setenv("APP_CONFIG_NAME", "subscriptionctl-test-missing")
	t.Setenv("APP_DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_DATABASE_DSN", path)
	t.Setenv("APP_LOG_LEVEL", "error")
	return path
}

func seedUser(t *testing.T, path, email string) string {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(conn))

	svc := user.NewService(store.NewRepository(store.New(conn)), catalog.Default(), zap.NewNop().Sugar())
	u, err := svc.Create(context.Background(), user.CreateInput{Name: "Ana", Email: email})
	require.NoError(t, err)
	return u.ID
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlans_PrintsCatalog(t *testing.T) {
	useTempDB(t)
	out, err := run(t, "plans")
	require.NoError(t, err)
	require.Contains(t, out, "ID")
	for _, id := range []types.PlanID{types.PlanFree, types.PlanBasic, types.PlanPro, types.PlanPremium, types.PlanEnterprise} {
		require.Contains(t, out, string(id))
	}
}

func TestMigrate(t *testing.T) {
	useTempDB(t)
	out, err := run(t, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "schema up to date (sqlite)")
}

func TestList_Empty(t *testing.T) {
	useTempDB(t)
	out, err := run(t, "list")
	require.NoError(t, err)
	require.Contains(t, out, "No subscriptions found.")
}

func TestGrantExtendCancel(t *testing.T) {
	path := useTempDB(t)
	userID := seedUser(t, path, "ana@example.com")

	out, err := run(t, "grant", "--user", userID, "--plan", "pro", "--price", "19.90", "--method", "pix", "--actor", "ops")
	require.NoError(t, err)
	var grant subscription.ManualGrant
	require.NoError(t, json.Unmarshal([]byte(out), &grant))
	require.Equal(t, types.SubscriptionStatusActive, grant.Subscription.Status)
	require.Equal(t, "19.9", grant.Payment.Amount.String())
	require.Equal(t, types.PaymentMethodPix, grant.Payment.Method)
	id := grant.Subscription.ID

	// already active
	_, err = run(t, "activate", id)
	require.ErrorIs(t, err, subscription.ErrInvalidState)

	_, err = run(t, "extend", id, "--amount", "0")
	require.ErrorIs(t, err, subscription.ErrValidation)

	out, err = run(t, "extend", id, "--amount", "10", "--unit", "days")
	require.NoError(t, err)
	require.Contains(t, out, id)

	out, err = run(t, "list", "--user", userID)
	require.NoError(t, err)
	require.Contains(t, out, id)
	require.Contains(t, out, "page 1/1, 1 total")

	out, err = run(t, "stats")
	require.NoError(t, err)
	var stats statistics.SubscriptionStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	require.EqualValues(t, 1, stats.Total)
	require.EqualValues(t, 1, stats.ByPlan["pro"])

	out, err = run(t, "cancel", id)
	require.NoError(t, err)
	var res subscription.CancelResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, types.SubscriptionStatusCancelled, res.Cancelled.Status)
	require.NotNil(t, res.Free)
	require.Equal(t, types.PlanFree, res.Free.PlanID)
}

func TestGrant_RequiresUserAndPlan(t *testing.T) {
	useTempDB(t)
	_, err := run(t, "grant", "--plan", "pro")
	require.Error(t, err)
}

func TestGrant_UnknownUser(t *testing.T) {
	useTempDB(t)
	_, err := run(t, "grant", "--user", "nobody", "--plan", "pro")
	require.ErrorIs(t, err, subscription.ErrNotFound)
}
