package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/internal/platform/db"
	"github.com/fatflowers/financeplus/pkg/types"
)

func (s *Store) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return wrapWrite("create subscription", err)
	}
	return nil
}

func (s *Store) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("subscription %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

func (s *Store) findNewestByStatus(ctx context.Context, userID string, statuses []types.SubscriptionStatus) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status IN ?", statuses).
		Order("created_at desc").
		First(&sub).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return &sub, nil
}

func (s *Store) FindLiveSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return s.findNewestByStatus(ctx, userID, types.LiveSubscriptionStatuses)
}

func (s *Store) FindCurrentSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return s.findNewestByStatus(ctx, userID, types.EntitledSubscriptionStatuses)
}

func (s *Store) UpdateSubscription(ctx context.Context, id string, guard Guard, updates map[string]any) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Subscription{}).Where("id = ?", id)
	if len(guard.Statuses) > 0 {
		q = q.Where("status IN ?", guard.Statuses)
	}
	if len(guard.NotStatuses) > 0 {
		q = q.Where("status NOT IN ?", guard.NotStatuses)
	}
	if guard.Version > 0 {
		q = q.Where("version = ?", guard.Version)
	}
	values := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")

	res := q.Updates(values)
	if res.Error != nil {
		return false, wrapWrite("update subscription", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListSubscriptions(ctx context.Context, q ListQuery) ([]*models.Subscription, int64, error) {
	table := models.Subscription{}.TableName()
	tx := s.db.WithContext(ctx).Model(&models.Subscription{})
	if len(q.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(q.Filters)}})
	}
	if q.Search != "" {
		users := models.User{}.TableName()
		pattern := db.LikePattern(s.db, q.Search)
		tx = tx.Joins(fmt.Sprintf("JOIN %s ON %s.id = %s.user_id", users, users, table)).
			Where(
				s.db.Where(db.CaseInsensitiveLikeExpr(s.db, users+".name"), pattern).
					Or(db.CaseInsensitiveLikeExpr(s.db, users+".email"), pattern),
			)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var rows []*models.Subscription
	query := tx.Select(table + ".*").
		Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "created_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "id"}, Desc: true})
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return rows, total, nil
}

// ListExpiring returns active subscriptions whose period ends in (from, to], soonest first.
func (s *Store) ListExpiring(ctx context.Context, from, to time.Time) ([]*models.Subscription, error) {
	var rows []*models.Subscription
	err := s.db.WithContext(ctx).
		Where("status = ?", types.SubscriptionStatusActive).
		Where("current_period_end > ? AND current_period_end <= ?", from, to).
		Order("current_period_end asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}
	return rows, nil
}

func (s *Store) CreateSubscriptionLog(ctx context.Context, log *models.SubscriptionLog) error {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to save subscription log: %w", err)
	}
	return nil
}
