package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/financeplus/pkg/types"
)

// SubscriptionLog records every change to a subscription, written in the
// same transaction as the change.
// Use case: auditing and troubleshooting.
type SubscriptionLog struct {
	ID             string `gorm:"column:id;size:36;primaryKey" json:"id"`
	SubscriptionID string `gorm:"column:subscription_id;size:36;not null;index" json:"subscription_id"`
	UserID         string `gorm:"column:user_id;size:64;not null;index:idx_subscription_logs_user_created,priority:1" json:"user_id"`
	// Action is the operation that produced the change.
	Action types.SubscriptionAction `gorm:"column:action;size:32;not null" json:"action"`
	// ActorID is the user who triggered the change, empty for system actions.
	ActorID string `gorm:"column:actor_id;size:64" json:"actor_id"`
	// Before is nil for newly created subscriptions.
	Before    datatypes.JSONType[*Subscription] `gorm:"column:before" json:"before"`
	After     datatypes.JSONType[*Subscription] `gorm:"column:after" json:"after"`
	Extra     datatypes.JSONMap                 `gorm:"column:extra" json:"extra"`
	CreatedAt time.Time                         `gorm:"index:idx_subscription_logs_user_created,priority:2" json:"created_at"`
}

func (SubscriptionLog) TableName() string {
	return "subscription_logs"
}
