package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/fatflowers/financeplus/internal/models"
)

// liveSubscriptionIndex keeps at most one pending/active/trialing row per user.
// Both postgres and sqlite support partial indexes with this syntax.
const liveSubscriptionIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_user_live
	ON subscriptions (user_id)
	WHERE status IN ('pending', 'active', 'trialing')`

// Migrate creates or updates the schema.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectPostgres, DialectSQLite, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.SubscriptionLog{},
	); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	if err := conn.Exec(liveSubscriptionIndex).Error; err != nil {
		return fmt.Errorf("db: create live subscription index: %w", err)
	}
	return nil
}
