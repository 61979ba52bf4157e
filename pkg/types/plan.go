package types

// PlanID identifies a catalog plan.
type PlanID string

const (
	PlanFree       PlanID = "free"
	PlanBasic      PlanID = "basic"
	PlanPro        PlanID = "pro"
	PlanPremium    PlanID = "premium"
	PlanEnterprise PlanID = "enterprise"
)

// Unlimited marks a resource limit without a cap.
const Unlimited int64 = -1

// Resources counted against plan limits.
const (
	ResourceAccounts     = "accounts"
	ResourceCategories   = "categories"
	ResourceTransactions = "transactions"
	ResourceReports      = "reports"
	ResourceExports      = "exports"
)

var Resources = []string{
	ResourceAccounts,
	ResourceCategories,
	ResourceTransactions,
	ResourceReports,
	ResourceExports,
}

// FeatureAll grants every feature.
const FeatureAll = "all_features"

// Limits maps a resource name to its quota.
type Limits map[string]int64

// Clone returns a copy that shares nothing with l.
func (l Limits) Clone() Limits {
	out := make(Limits, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
