package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/financeplus/pkg/types"
)

// User is owned by the account system; the subscription service only keeps
// the cached entitlement projection (SubscriptionID, PlanID, Limits, Features)
// in sync with the user's current subscription.
type User struct {
	ID           string     `gorm:"column:id;size:64;primaryKey" json:"id"`
	Name         string     `gorm:"column:name;size:255;not null" json:"name"`
	Email        string     `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;size:255" json:"-"`
	Role         types.Role `gorm:"column:role;size:16;not null;default:user" json:"role"`
	IsActive     bool       `gorm:"column:is_active;not null" json:"is_active"`

	SubscriptionID *string                          `gorm:"column:subscription_id;size:36" json:"subscription_id"`
	PlanID         types.PlanID                     `gorm:"column:plan_id;size:32;not null;default:free" json:"plan_id"`
	Limits         datatypes.JSONType[types.Limits] `gorm:"column:limits" json:"limits"`
	Features       datatypes.JSONSlice[string]      `gorm:"column:features" json:"features"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
