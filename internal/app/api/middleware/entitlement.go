package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/logctx"
	"github.com/fatflowers/financeplus/pkg/response"
)

// Gin context keys set by the entitlement middleware.
const (
	SubscriptionKey = "subscription"
	QuotaKey        = "quota"
)

// EntitlementResolver returns the subscription governing a user's access.
type EntitlementResolver interface {
	EntitlementsForUser(ctx context.Context, userID string) (*models.Subscription, error)
}

// UsageCounter reports how much of resource the current user already consumes.
type UsageCounter func(c *gin.Context, userID, resource string) (int64, error)

// QueryUsageCounter reads the usage from a query parameter. A missing
// parameter counts as zero.
func QueryUsageCounter(param string) UsageCounter {
	return func(c *gin.Context, _, _ string) (int64, error) {
		raw := c.Query(param)
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid %s: %q", param, raw)
		}
		return n, nil
	}
}

// resolve loads the caller's entitlements. Privileged callers get ok=true
// with a nil subscription and skip every entitlement check.
func resolve(c *gin.Context, res EntitlementResolver) (*models.User, *models.Subscription, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		abort(c, http.StatusUnauthorized, response.APIResponseCodeUnauthorized, nil)
		return nil, nil, false
	}
	if user.Role.Privileged() {
		return user, nil, true
	}
	sub, err := res.EntitlementsForUser(c.Request.Context(), user.ID)
	if err != nil {
		logctx.FromCtx(c.Request.Context(), logctx.FromGin(c, nil)).Errorw("failed to resolve entitlements", "err", err)
		abort(c, http.StatusServiceUnavailable, response.APIResponseCodeUnavailable, nil)
		return nil, nil, false
	}
	if sub == nil {
		abort(c, http.StatusForbidden, response.APIResponseCodeSubscriptionRequired, nil)
		return nil, nil, false
	}
	c.Set(SubscriptionKey, sub)
	return user, sub, true
}

// RequireActiveSubscription rejects callers whose subscription is not active.
func RequireActiveSubscription(res EntitlementResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, sub, ok := resolve(c, res)
		if !ok {
			return
		}
		if !user.Role.Privileged() && !subscription.IsActive(sub) {
			abort(c, http.StatusForbidden, response.APIResponseCodeSubscriptionInactive, gin.H{"status": sub.Status})
			return
		}
		c.Next()
	}
}

// RequireFeature rejects callers whose plan lacks feature.
func RequireFeature(res EntitlementResolver, feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, sub, ok := resolve(c, res)
		if !ok {
			return
		}
		if !user.Role.Privileged() && !subscription.HasFeature(sub, feature) {
			abort(c, http.StatusForbidden, response.APIResponseCodeFeatureNotAvailable, gin.H{"required_feature": feature})
			return
		}
		c.Next()
	}
}

// CheckUsageLimit rejects callers that already reached their limit of
// resource. The computed quota is stored under QuotaKey.
func CheckUsageLimit(res EntitlementResolver, resource string, count UsageCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, sub, ok := resolve(c, res)
		if !ok {
			return
		}
		if user.Role.Privileged() {
			c.Next()
			return
		}
		usage, err := count(c, user.ID, resource)
		if err != nil {
			abort(c, http.StatusBadRequest, response.APIResponseCodeBadRequest, err.Error())
			return
		}
		quota := subscription.RemainingQuota(sub, resource, usage)
		c.Set(QuotaKey, quota)
		if quota.Exceeded {
			abort(c, http.StatusForbidden, response.APIResponseCodeUsageLimitExceeded, quota)
			return
		}
		c.Next()
	}
}
