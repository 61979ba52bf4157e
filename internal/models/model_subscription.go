package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/fatflowers/financeplus/pkg/types"
)

// Subscription is a time-bounded grant of a plan's entitlements to a user.
// Limits and Features are a snapshot taken when the plan was assigned; later
// catalog changes never alter existing rows.
type Subscription struct {
	ID       string                   `gorm:"column:id;size:36;primaryKey" json:"id"`
	UserID   string                   `gorm:"column:user_id;size:64;not null;index" json:"user_id"`
	PlanID   types.PlanID             `gorm:"column:plan_id;size:32;not null;index" json:"plan_id"`
	Status   types.SubscriptionStatus `gorm:"column:status;size:32;not null;index" json:"status"`
	Interval types.Interval           `gorm:"column:billing_interval;size:16;not null" json:"interval"`
	// CurrentPeriodEnd is nil for subscriptions that never expire (free plan).
	CurrentPeriodStart *time.Time `gorm:"column:current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `gorm:"column:current_period_end;index" json:"current_period_end"`

	RequestedAt *time.Time `gorm:"column:requested_at" json:"requested_at"`
	ActivatedAt *time.Time `gorm:"column:activated_at" json:"activated_at"`
	ActivatedBy *string    `gorm:"column:activated_by;size:64" json:"activated_by"`
	ExtendedAt  *time.Time `gorm:"column:extended_at" json:"extended_at"`
	ExtendedBy  *string    `gorm:"column:extended_by;size:64" json:"extended_by"`
	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelled_at"`
	CancelledBy *string    `gorm:"column:cancelled_by;size:64" json:"cancelled_by"`

	Limits         datatypes.JSONType[types.Limits]  `gorm:"column:limits" json:"limits"`
	Features       datatypes.JSONSlice[string]       `gorm:"column:features" json:"features"`
	PaymentHistory datatypes.JSONSlice[PaymentRecord] `gorm:"column:payment_history" json:"payment_history"`
	// Metadata holds notes, the creation source and admin limit overrides.
	Metadata datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`

	// Version guards read-modify-write updates.
	Version   int64     `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// LimitMap returns the snapshot limits; never nil.
func (s *Subscription) LimitMap() types.Limits {
	if s == nil {
		return types.Limits{}
	}
	l := s.Limits.Data()
	if l == nil {
		return types.Limits{}
	}
	return l
}

func (s *Subscription) FeatureList() []string {
	if s == nil {
		return nil
	}
	return s.Features
}

// Clone returns a copy whose maps and slices are not shared with s.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Limits = datatypes.NewJSONType(s.LimitMap().Clone())
	cp.Features = append(datatypes.JSONSlice[string]{}, s.Features...)
	cp.PaymentHistory = append(datatypes.JSONSlice[PaymentRecord]{}, s.PaymentHistory...)
	cp.Metadata = datatypes.JSONMap{}
	for k, v := range s.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}

// PaymentRecord is one immutable entry of Subscription.PaymentHistory.
type PaymentRecord struct {
	ID          string              `json:"id"`
	Amount      decimal.Decimal     `json:"amount"`
	Currency    string              `json:"currency"`
	Method      types.PaymentMethod `json:"method"`
	Status      types.PaymentStatus `json:"status"`
	Description string              `json:"description,omitempty"`
	ProcessedBy string              `json:"processed_by,omitempty"`
	ProcessedAt time.Time           `json:"processed_at"`
}
