package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/fatflowers/financeplus/internal/app/api/middleware"
	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	subsvc "github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/response"
	"github.com/fatflowers/financeplus/pkg/types"
)

type RequestUpgradeRequest struct {
	PlanID   types.PlanID   `json:"plan_id" binding:"required"`
	Interval types.Interval `json:"interval"`
	Note     string         `json:"note"`
}

type CancelRequest struct {
	// SubscriptionID defaults to the caller's current subscription.
	SubscriptionID string `json:"subscription_id"`
}

// CurrentSubscriptionResponse describes what the caller is entitled to right now.
type CurrentSubscriptionResponse struct {
	Subscription *models.Subscription `json:"subscription"`
	Plan         *catalog.Plan        `json:"plan,omitempty"`
	IsActive     bool                 `json:"is_active"`
}

func authUser(c *gin.Context) (*models.User, bool) {
	u, ok := mw.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
	}
	return u, ok
}

// @Summary      List plans
// @Description  Returns the plan catalog in tier order.
// @Tags         Subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespPlans
// @Router       /api/v1/subscriptions/plans [get]
func ApiListPlans(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(cat.Plans()))
	}
}

// @Summary      Current subscription
// @Description  Returns the caller's current subscription, or the free plan when there is none.
// @Tags         Subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespCurrentSubscription
// @Router       /api/v1/subscriptions/current [get]
func ApiCurrentSubscription(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authUser(c)
		if !ok {
			return
		}
		sub, err := svc.EntitlementsForUser(c.Request.Context(), user.ID)
		if err != nil {
			writeError(c, log, err)
			return
		}
		res := &CurrentSubscriptionResponse{Subscription: sub, IsActive: subsvc.IsActive(sub)}
		if p, ok := svc.Catalog().Lookup(sub.PlanID); ok {
			res.Plan = &p
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Request upgrade
// @Description  Creates a pending subscription for a paid plan. An administrator activates it after payment.
// @Tags         Subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handlers.RequestUpgradeRequest true "Plan and interval"
// @Success      201  {object}  handlers.RespSubscription
// @Failure      400  {object}  handlers.RespOK
// @Failure      409  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/request [post]
func ApiRequestUpgrade(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authUser(c)
		if !ok {
			return
		}
		var req RequestUpgradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		sub, err := svc.RequestUpgrade(c.Request.Context(), subsvc.RequestUpgradeInput{
			UserID:   user.ID,
			PlanID:   req.PlanID,
			Interval: req.Interval,
			Note:     req.Note,
		})
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, response.OKT(sub))
	}
}

// @Summary      Cancel subscription
// @Description  Cancels the caller's current subscription, or the given one when it belongs to the caller, and falls back to the free plan.
// @Tags         Subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handlers.CancelRequest false "Subscription to cancel"
// @Success      200  {object}  handlers.RespCancel
// @Failure      404  {object}  handlers.RespOK
// @Failure      409  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/cancel [post]
func ApiCancelOwnSubscription(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authUser(c)
		if !ok {
			return
		}
		var req CancelRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err)
				return
			}
		}
		ctx := c.Request.Context()
		var (
			sub *models.Subscription
			err error
		)
		if req.SubscriptionID != "" {
			sub, err = svc.Get(ctx, req.SubscriptionID)
			if err == nil && sub.UserID != user.ID {
				err = fmt.Errorf("%w: subscription %s", subsvc.ErrNotFound, req.SubscriptionID)
			}
		} else {
			sub, err = svc.CurrentForUser(ctx, user.ID)
		}
		if err != nil {
			writeError(c, log, err)
			return
		}
		res, err := svc.Cancel(ctx, sub.ID, user.ID)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// EntitlementsResponse is the resolved access of the caller.
type EntitlementsResponse struct {
	PlanID         types.PlanID             `json:"plan_id"`
	SubscriptionID string                   `json:"subscription_id,omitempty"`
	Status         types.SubscriptionStatus `json:"status"`
	Limits         types.Limits             `json:"limits"`
	Features       []string                 `json:"features"`
	Unrestricted   bool                     `json:"unrestricted"`
}

// @Summary      Entitlements
// @Description  Returns the caller's resolved limits and features. Administrators are unrestricted.
// @Tags         Entitlements
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespEntitlements
// @Failure      403  {object}  handlers.RespOK
// @Router       /api/v1/entitlements [get]
func ApiEntitlements(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authUser(c)
		if !ok {
			return
		}
		sub, err := subscriptionFromContext(c, svc, user)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&EntitlementsResponse{
			PlanID:         sub.PlanID,
			SubscriptionID: sub.ID,
			Status:         sub.Status,
			Limits:         sub.LimitMap(),
			Features:       sub.FeatureList(),
			Unrestricted:   user.Role.Privileged(),
		}))
	}
}

// subscriptionFromContext reuses the subscription resolved by the
// entitlement middleware. Privileged callers skip that lookup.
func subscriptionFromContext(c *gin.Context, svc *subsvc.Service, user *models.User) (*models.Subscription, error) {
	if v, ok := c.Get(mw.SubscriptionKey); ok {
		if sub, ok := v.(*models.Subscription); ok && sub != nil {
			return sub, nil
		}
	}
	sub, err := svc.EntitlementsForUser(c.Request.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.New("no entitlements resolved")
	}
	return sub, nil
}

// @Summary      Feature check
// @Description  Succeeds when the caller's plan includes the feature.
// @Tags         Entitlements
// @Produce      json
// @Security     BearerAuth
// @Param        name  path  string  true  "Feature name"
// @Success      200  {object}  handlers.RespOK
// @Failure      403  {object}  handlers.RespOK
// @Router       /api/v1/entitlements/features/{name} [get]
func ApiFeatureCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(gin.H{"feature": c.Param("name"), "enabled": true}))
	}
}

// @Summary      Usage quota
// @Description  Compares the given usage with the caller's limit for a resource. Answers 403 USAGE_LIMIT_EXCEEDED once the limit is reached.
// @Tags         Entitlements
// @Produce      json
// @Security     BearerAuth
// @Param        resource  path   string  true   "Resource (accounts, categories, transactions, reports, exports)"
// @Param        usage     query  int     false  "Current usage"
// @Success      200  {object}  handlers.RespQuota
// @Failure      403  {object}  handlers.RespQuota
// @Router       /api/v1/entitlements/quota/{resource} [get]
func ApiQuota(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Get(mw.QuotaKey); ok {
			c.JSON(http.StatusOK, response.OKT(v))
			return
		}
		// privileged callers are not metered
		c.JSON(http.StatusOK, response.OKT(subsvc.Quota{Resource: resource, Limit: types.Unlimited, Remaining: types.Unlimited, Unlimited: true}))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service, log *zap.SugaredLogger) {
	r.GET("/subscriptions/plans", ApiListPlans(svc.Catalog()))
	r.GET("/subscriptions/current", ApiCurrentSubscription(svc, log))
	r.POST("/subscriptions/request", ApiRequestUpgrade(svc, log))
	r.POST("/subscriptions/cancel", ApiCancelOwnSubscription(svc, log))

	ent := r.Group("/entitlements")
	ent.GET("", mw.RequireActiveSubscription(svc), ApiEntitlements(svc, log))
	ent.GET("/features/:name", func(c *gin.Context) {
		mw.RequireFeature(svc, c.Param("name"))(c)
	}, ApiFeatureCheck())
	for _, resource := range types.Resources {
		ent.GET("/quota/"+resource, mw.CheckUsageLimit(svc, resource, mw.QueryUsageCounter("usage")), ApiQuota(resource))
	}
}
