package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/financeplus/pkg/config"
	"github.com/fatflowers/financeplus/pkg/types"
)

func TestDefault_PlanTable(t *testing.T) {
	c := Default()
	tests := []struct {
		plan     types.PlanID
		accounts int64
		exports  int64
		feature  string
	}{
		{plan: types.PlanFree, accounts: 2, exports: 0, feature: "basic_dashboard"},
		{plan: types.PlanBasic, accounts: 5, exports: 2, feature: "basic_reports"},
		{plan: types.PlanPro, accounts: 10, exports: 5, feature: "budget_alerts"},
		{plan: types.PlanPremium, accounts: 20, exports: 10, feature: "goals"},
		{plan: types.PlanEnterprise, accounts: types.Unlimited, exports: types.Unlimited, feature: types.FeatureAll},
	}
	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			l := c.LimitsFor(tt.plan)
			assert.Equal(t, tt.accounts, l[types.ResourceAccounts])
			assert.Equal(t, tt.exports, l[types.ResourceExports])
			assert.Contains(t, c.FeaturesFor(tt.plan), tt.feature)
		})
	}
	ids := make([]types.PlanID, 0)
	for _, p := range c.Plans() {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []types.PlanID{types.PlanFree, types.PlanBasic, types.PlanPro, types.PlanPremium, types.PlanEnterprise}, ids)
}

func TestUnknownPlanFallsBackToFree(t *testing.T) {
	c := Default()
	for _, id := range []types.PlanID{"", "gold", "FREE", "Pro"} {
		require.Equal(t, c.LimitsFor(types.PlanFree), c.LimitsFor(id), "plan %q", id)
		require.Equal(t, c.FeaturesFor(types.PlanFree), c.FeaturesFor(id), "plan %q", id)
		require.True(t, errors.Is(c.Validate(id), ErrUnknownPlan))
		_, ok := c.Lookup(id)
		require.False(t, ok)
	}
	require.NoError(t, c.Validate(types.PlanPremium))
}

func TestReturnedValuesAreCopies(t *testing.T) {
	c := Default()
	l := c.LimitsFor(types.PlanPro)
	l[types.ResourceAccounts] = 999
	f := c.FeaturesFor(types.PlanPro)
	f[0] = "hacked"
	p, _ := c.Lookup(types.PlanPro)
	p.Limits[types.ResourceExports] = 999

	require.Equal(t, int64(10), c.LimitsFor(types.PlanPro)[types.ResourceAccounts])
	require.Equal(t, int64(5), c.LimitsFor(types.PlanPro)[types.ResourceExports])
	require.Equal(t, "basic_dashboard", c.FeaturesFor(types.PlanPro)[0])
}

func TestNew_ConfigOverridesReplacePlanWholesale(t *testing.T) {
	cfg := &config.Config{
		Billing: config.BillingConfig{DefaultCurrency: "USD"},
		Plans: []*config.PlanConfig{
			{ID: "pro", Name: "Pro", Limits: map[string]int64{"accounts": 12}, Features: []string{"goals", "goals"}, MonthlyPrice: "9.99"},
			{ID: "team", Limits: map[string]int64{"accounts": -1}},
		},
	}
	c, err := New(cfg, zap.NewNop().Sugar())
	require.NoError(t, err)

	p, ok := c.Lookup(types.PlanPro)
	require.True(t, ok)
	require.Equal(t, types.Limits{"accounts": 12}, p.Limits)
	require.Equal(t, []string{"goals"}, p.Features)
	require.True(t, decimal.RequireFromString("9.99").Equal(p.Price(types.IntervalMonth)))
	require.True(t, p.Price(types.IntervalYear).IsZero())
	require.Equal(t, "USD", p.Currency)

	team, ok := c.Lookup("team")
	require.True(t, ok)
	require.Equal(t, "team", team.Name)
	require.Equal(t, types.PlanID("team"), c.Plans()[len(c.Plans())-1].ID)
}

func TestNew_RejectsInvalidOverrides(t *testing.T) {
	_, err := New(&config.Config{Plans: []*config.PlanConfig{{ID: "pro", MonthlyPrice: "abc"}}}, nil)
	require.Error(t, err)

	_, err = New(&config.Config{Plans: []*config.PlanConfig{{ID: "pro", Limits: map[string]int64{"accounts": -2}}}}, nil)
	require.Error(t, err)
}
