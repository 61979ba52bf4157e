package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/fatflowers/financeplus/pkg/types"
)

var (
	freeFeatures = []string{"basic_dashboard", "manual_transactions"}
	limitsOrder  = []string{
		types.ResourceAccounts,
		types.ResourceCategories,
		types.ResourceTransactions,
		types.ResourceReports,
		types.ResourceExports,
	}
)

func limits(values ...int64) types.Limits {
	l := make(types.Limits, len(limitsOrder))
	for i, r := range limitsOrder {
		l[r] = values[i]
	}
	return l
}

func with(extra ...string) []string {
	return append(append([]string{}, freeFeatures...), extra...)
}

func defaultPlans(currency string) []Plan {
	price := decimal.RequireFromString
	return []Plan{
		{
			ID:           types.PlanFree,
			Name:         "Gratuito",
			Limits:       limits(2, 5, 50, 1, 0),
			Features:     with(),
			MonthlyPrice: decimal.Zero,
			YearlyPrice:  decimal.Zero,
			Currency:     currency,
		},
		{
			ID:           types.PlanBasic,
			Name:         "Básico",
			Limits:       limits(5, 15, 500, 5, 2),
			Features:     with("categories", "basic_reports"),
			MonthlyPrice: price("14.90"),
			YearlyPrice:  price("149.00"),
			Currency:     currency,
		},
		{
			ID:           types.PlanPro,
			Name:         "Profissional",
			Limits:       limits(10, 50, 1000, 10, 5),
			Features:     with("categories", "advanced_reports", "exports", "goals", "budget_alerts"),
			MonthlyPrice: price("29.90"),
			YearlyPrice:  price("299.00"),
			Currency:     currency,
			Popular:      true,
		},
		{
			ID:           types.PlanPremium,
			Name:         "Premium",
			Limits:       limits(20, 50, 5000, 20, 10),
			Features:     with("categories", "advanced_reports", "exports", "goals"),
			MonthlyPrice: price("49.90"),
			YearlyPrice:  price("499.00"),
			Currency:     currency,
		},
		{
			ID:           types.PlanEnterprise,
			Name:         "Empresarial",
			Limits:       limits(types.Unlimited, types.Unlimited, types.Unlimited, types.Unlimited, types.Unlimited),
			Features:     []string{types.FeatureAll, "priority_support", "custom_integrations"},
			MonthlyPrice: price("99.90"),
			YearlyPrice:  price("999.00"),
			Currency:     currency,
		},
	}
}
