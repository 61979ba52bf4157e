package subscription

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/types"
)

type RequestUpgradeInput struct {
	UserID   string         `json:"user_id"`
	PlanID   types.PlanID   `json:"plan_id"`
	Interval types.Interval `json:"interval"`
	Note     string         `json:"note"`
}

type ExtendInput struct {
	SubscriptionID string `json:"subscription_id"`
	Amount         int    `json:"amount"`
	// Unit is "days" or the subscription's interval ("interval", "month", "year").
	Unit       string `json:"unit"`
	ExtendedBy string `json:"extended_by"`
}

type CancelResult struct {
	Cancelled *models.Subscription `json:"cancelled"`
	// Free is the free subscription the user falls back to. It is nil when
	// the user still holds another live subscription.
	Free *models.Subscription `json:"free"`
}

type CreateManualInput struct {
	UserID   string         `json:"user_id"`
	PlanID   types.PlanID   `json:"plan_id"`
	Interval types.Interval `json:"interval"`
	// Price defaults to the catalog price of the interval.
	Price         *decimal.Decimal    `json:"price"`
	Currency      string              `json:"currency"`
	PaymentMethod types.PaymentMethod `json:"payment_method"`
	Notes         string              `json:"notes"`
	ActivatedBy   string              `json:"activated_by"`
}

type ManualGrant struct {
	Subscription *models.Subscription `json:"subscription"`
	Payment      models.PaymentRecord `json:"payment"`
}

type RecordPaymentInput struct {
	SubscriptionID string              `json:"subscription_id"`
	Amount         decimal.Decimal     `json:"amount"`
	Currency       string              `json:"currency"`
	Method         types.PaymentMethod `json:"method"`
	Description    string              `json:"description"`
	ProcessedBy    string              `json:"processed_by"`
}

// UpdateFieldsInput is an admin edit. Nil fields are left unchanged.
type UpdateFieldsInput struct {
	SubscriptionID   string                    `json:"subscription_id"`
	PlanID           *types.PlanID             `json:"plan_id"`
	Status           *types.SubscriptionStatus `json:"status"`
	CurrentPeriodEnd *time.Time                `json:"current_period_end"`
	Notes            *string                   `json:"notes"`
	// LimitOverrides are merged over the snapshot limits and recorded in metadata.
	LimitOverrides types.Limits `json:"limit_overrides"`
	UpdatedBy      string       `json:"updated_by"`
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type Filter struct {
	Status types.SubscriptionStatus `json:"status" form:"status"`
	PlanID types.PlanID             `json:"plan_id" form:"plan_id"`
	UserID string                   `json:"user_id" form:"user_id"`
	Search string                   `json:"search" form:"search"`
	Page   int                      `json:"page" form:"page"`
	Limit  int                      `json:"limit" form:"limit"`
}

type Page struct {
	Items      []*models.Subscription `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}
