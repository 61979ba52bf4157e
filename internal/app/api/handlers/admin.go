package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	mw "github.com/fatflowers/financeplus/internal/app/api/middleware"
	"github.com/fatflowers/financeplus/internal/app/service/statistics"
	subsvc "github.com/fatflowers/financeplus/internal/app/service/subscription"
	usersvc "github.com/fatflowers/financeplus/internal/app/service/user"
	"github.com/fatflowers/financeplus/pkg/response"
	"github.com/fatflowers/financeplus/pkg/types"
)

const defaultExpiringDays = 7

type CreateManualRequest struct {
	UserID   string         `json:"user_id" binding:"required"`
	PlanID   types.PlanID   `json:"plan_id" binding:"required"`
	Interval types.Interval `json:"interval"`
	// Price defaults to the catalog price of the interval.
	Price         *decimal.Decimal    `json:"price" swaggertype:"string"`
	Currency      string              `json:"currency"`
	PaymentMethod types.PaymentMethod `json:"payment_method"`
	Notes         string              `json:"notes"`
}

type UpdateSubscriptionRequest struct {
	PlanID           *types.PlanID             `json:"plan_id"`
	Status           *types.SubscriptionStatus `json:"status"`
	CurrentPeriodEnd *time.Time                `json:"current_period_end"`
	Notes            *string                   `json:"notes"`
	LimitOverrides   types.Limits              `json:"limit_overrides"`
}

type ExtendRequest struct {
	Amount int `json:"amount" binding:"required"`
	// Unit is days or interval; the subscription's own interval name is accepted too.
	Unit string `json:"unit" binding:"required"`
}

type RecordPaymentRequest struct {
	Amount      decimal.Decimal     `json:"amount" swaggertype:"string"`
	Currency    string              `json:"currency"`
	Method      types.PaymentMethod `json:"method"`
	Description string              `json:"description"`
}

// actorID is the id of the authenticated administrator.
func actorID(c *gin.Context) string {
	if u, ok := mw.CurrentUser(c); ok {
		return u.ID
	}
	return ""
}

// @Summary      List subscriptions (Admin)
// @Description  Filters by status, plan and user; search matches user name or email. Newest first.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        status   query  string  false  "Status"
// @Param        plan_id  query  string  false  "Plan"
// @Param        user_id  query  string  false  "User"
// @Param        search   query  string  false  "Name or email fragment"
// @Param        page     query  int     false  "Page (default 1)"
// @Param        limit    query  int     false  "Page size (default 10, max 100)"
// @Success      200  {object}  handlers.RespSubscriptionPage
// @Router       /api/v1/admin/subscriptions [get]
func ApiListSubscriptions(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f subsvc.Filter
		if err := c.ShouldBindQuery(&f); err != nil {
			badRequest(c, err)
			return
		}
		page, err := svc.Find(c.Request.Context(), f)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(page))
	}
}

// @Summary      Subscription statistics (Admin)
// @Description  Totals by status, plan and source, subscriptions created in the last 30 days and revenue per currency.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespStats
// @Router       /api/v1/admin/subscriptions/stats [get]
func ApiSubscriptionStats(svc *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.SubscriptionStats(c.Request.Context())
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(stats))
	}
}

// @Summary      Expiring subscriptions (Admin)
// @Description  Active subscriptions whose period ends within the given number of days, soonest first.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        days  query  int  false  "Window in days (default 7)"
// @Success      200  {object}  handlers.RespSubscriptionList
// @Router       /api/v1/admin/subscriptions/expiring [get]
func ApiExpiringSubscriptions(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := defaultExpiringDays
		if v := c.Query("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				badRequest(c, err)
				return
			}
			days = n
		}
		rows, err := svc.FindExpiring(c.Request.Context(), days)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Grant subscription (Admin)
// @Description  Creates and activates a subscription for a user and records the payment received outside the system.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handlers.CreateManualRequest true "Grant"
// @Success      201  {object}  handlers.RespManualGrant
// @Failure      409  {object}  handlers.RespOK
// @Router       /api/v1/admin/subscriptions [post]
func ApiCreateManual(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateManualRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		grant, err := svc.CreateManual(c.Request.Context(), subsvc.CreateManualInput{
			UserID:        req.UserID,
			PlanID:        req.PlanID,
			Interval:      req.Interval,
			Price:         req.Price,
			Currency:      req.Currency,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
			ActivatedBy:   actorID(c),
		})
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, response.OKT(grant))
	}
}

// @Summary      Get subscription (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Subscription id"
// @Success      200  {object}  handlers.RespSubscription
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/admin/subscriptions/{id} [get]
func ApiGetSubscription(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Update subscription (Admin)
// @Description  Changes plan, status, period end, notes or limit overrides. Omitted fields are kept.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                              true  "Subscription id"
// @Param        request  body  handlers.UpdateSubscriptionRequest  true  "Fields to change"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions/{id} [put]
func ApiUpdateSubscription(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		sub, err := svc.UpdateFields(c.Request.Context(), subsvc.UpdateFieldsInput{
			SubscriptionID:   c.Param("id"),
			PlanID:           req.PlanID,
			Status:           req.Status,
			CurrentPeriodEnd: req.CurrentPeriodEnd,
			Notes:            req.Notes,
			LimitOverrides:   req.LimitOverrides,
			UpdatedBy:        actorID(c),
		})
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Activate subscription (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Subscription id"
// @Success      200  {object}  handlers.RespSubscription
// @Failure      409  {object}  handlers.RespOK
// @Router       /api/v1/admin/subscriptions/{id}/activate [post]
func ApiActivateSubscription(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, err := svc.Activate(c.Request.Context(), c.Param("id"), actorID(c))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Extend subscription (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                  true  "Subscription id"
// @Param        request  body  handlers.ExtendRequest  true  "Amount and unit"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/admin/subscriptions/{id}/extend [post]
func ApiExtendSubscription(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExtendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		sub, err := svc.Extend(c.Request.Context(), subsvc.ExtendInput{
			SubscriptionID: c.Param("id"),
			Amount:         req.Amount,
			Unit:           req.Unit,
			ExtendedBy:     actorID(c),
		})
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Cancel subscription (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Subscription id"
// @Success      200  {object}  handlers.RespCancel
// @Router       /api/v1/admin/subscriptions/{id}/cancel [post]
func ApiCancelSubscription(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Cancel(c.Request.Context(), c.Param("id"), actorID(c))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Record payment (Admin)
// @Description  Appends a payment received outside the system to the subscription's history.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                         true  "Subscription id"
// @Param        request  body  handlers.RecordPaymentRequest  true  "Payment"
// @Success      201  {object}  handlers.RespPayment
// @Router       /api/v1/admin/subscriptions/{id}/payments [post]
func ApiRecordPayment(svc *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecordPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		rec, err := svc.RecordPayment(c.Request.Context(), subsvc.RecordPaymentInput{
			SubscriptionID: c.Param("id"),
			Amount:         req.Amount,
			Currency:       req.Currency,
			Method:         req.Method,
			Description:    req.Description,
			ProcessedBy:    actorID(c),
		})
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, response.OKT(rec))
	}
}

// @Summary      Delete user (Admin)
// @Description  Removes the user together with every subscription they hold.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "User id"
// @Success      200  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/admin/users/{id} [delete]
func ApiDeleteUser(svc *usersvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		removed, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"subscriptions_removed": removed}))
	}
}

func RegisterAdminRoutes(r gin.IRouter, sub *subsvc.Service, stats *statistics.Service, users *usersvc.Service, log *zap.SugaredLogger) {
	r.GET("/subscriptions", ApiListSubscriptions(sub, log))
	r.GET("/subscriptions/stats", ApiSubscriptionStats(stats, log))
	r.GET("/subscriptions/expiring", ApiExpiringSubscriptions(sub, log))
	r.POST("/subscriptions", ApiCreateManual(sub, log))
	r.GET("/subscriptions/:id", ApiGetSubscription(sub, log))
	r.PUT("/subscriptions/:id", ApiUpdateSubscription(sub, log))
	r.POST("/subscriptions/:id/activate", ApiActivateSubscription(sub, log))
	r.POST("/subscriptions/:id/extend", ApiExtendSubscription(sub, log))
	r.POST("/subscriptions/:id/cancel", ApiCancelSubscription(sub, log))
	r.POST("/subscriptions/:id/payments", ApiRecordPayment(sub, log))
	r.DELETE("/users/:id", ApiDeleteUser(users, log))
}
