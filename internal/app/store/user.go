package store

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/financeplus/internal/models"
)

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapWrite("create user", err)
	}
	return nil
}

// SyncUserEntitlements overwrites the cached projection; re-applying the same
// values is a no-op. An empty SubscriptionID clears the reference.
func (s *Store) SyncUserEntitlements(ctx context.Context, userID string, p UserProjection) error {
	var subID *string
	if p.SubscriptionID != "" {
		subID = &p.SubscriptionID
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"subscription_id": subID,
		"plan_id":         p.PlanID,
		"limits":          datatypes.NewJSONType(p.Limits),
		"features":        datatypes.JSONSlice[string](p.Features),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to sync user entitlements: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.SubscriptionLog{}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription logs: %w", err)
		}
		res := tx.Where("user_id = ?", id).Delete(&models.Subscription{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete subscriptions: %w", res.Error)
		}
		removed = res.RowsAffected
		res = tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
