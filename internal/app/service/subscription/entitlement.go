package subscription

import (
	"time"

	"github.com/samber/lo"

	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/types"
)

// Entitlement queries are pure: they never touch storage and never consider
// the caller's role. Privileged-role bypass belongs to the HTTP middleware.

// IsActive reports whether sub grants access now.
func IsActive(sub *models.Subscription) bool {
	return IsActiveAt(sub, time.Now())
}

// IsActiveAt reports whether sub is active or trialing and its period has not ended at t.
func IsActiveAt(sub *models.Subscription, t time.Time) bool {
	if sub == nil || !sub.Status.Entitled() {
		return false
	}
	return sub.CurrentPeriodEnd == nil || sub.CurrentPeriodEnd.After(t)
}

// HasFeature reports whether the snapshot contains name or all_features.
func HasFeature(sub *models.Subscription, name string) bool {
	features := sub.FeatureList()
	return lo.Contains(features, types.FeatureAll) || lo.Contains(features, name)
}

// Quota is the result of a usage check. Remaining is meaningless when Unlimited.
type Quota struct {
	Resource  string `json:"resource"`
	Limit     int64  `json:"limit"`
	Usage     int64  `json:"usage"`
	Remaining int64  `json:"remaining"`
	Unlimited bool   `json:"unlimited"`
	Exceeded  bool   `json:"exceeded"`
}

// RemainingQuota compares usage with the snapshot limit of resource. A
// resource missing from the snapshot has a limit of zero. Negative usage
// counts as zero.
func RemainingQuota(sub *models.Subscription, resource string, usage int64) Quota {
	usage = max(0, usage)
	q := Quota{Resource: resource, Usage: usage}
	limit := sub.LimitMap()[resource]
	q.Limit = limit
	if limit == types.Unlimited {
		q.Unlimited = true
		q.Remaining = types.Unlimited
		return q
	}
	q.Remaining = max(0, limit-usage)
	q.Exceeded = usage >= limit
	return q
}
