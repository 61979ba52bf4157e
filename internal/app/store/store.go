package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/types"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Guard restricts a conditional update. Zero fields are not checked.
type Guard struct {
	// Statuses lists the statuses the row must currently have.
	Statuses []types.SubscriptionStatus
	// NotStatuses lists statuses the row must not have.
	NotStatuses []types.SubscriptionStatus
	// Version is the optimistic lock value read before the update.
	Version int64
}

// ListQuery selects a page of subscriptions.
type ListQuery struct {
	Filters []*types.CommonFilter
	// Search matches the owning user's name or email, case-insensitively.
	Search string
	Offset int
	Limit  int
}

// UserProjection is the entitlement state cached on the user row.
type UserProjection struct {
	SubscriptionID string
	PlanID         types.PlanID
	Limits         types.Limits
	Features       []string
}

// Repository is the persistence contract of the subscription and user services.
// Methods called on the tx argument of Transaction run inside that transaction.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	// FindLiveSubscription returns the user's pending/active/trialing subscription, or nil.
	FindLiveSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	// FindCurrentSubscription returns the user's newest active/trialing subscription, or nil.
	FindCurrentSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	// UpdateSubscription applies updates when the row matches guard and reports whether it did.
	UpdateSubscription(ctx context.Context, id string, guard Guard, updates map[string]any) (bool, error)
	ListSubscriptions(ctx context.Context, q ListQuery) ([]*models.Subscription, int64, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]*models.Subscription, error)
	CreateSubscriptionLog(ctx context.Context, log *models.SubscriptionLog) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	SyncUserEntitlements(ctx context.Context, userID string, p UserProjection) error
	// DeleteUser removes the user with its subscriptions and their logs.
	DeleteUser(ctx context.Context, id string) (int64, error)
}

// Store implements Repository on gorm.
type Store struct {
	db *gorm.DB
}

var _ Repository = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func NewRepository(s *Store) Repository {
	return s
}

var Module = fx.Options(
	fx.Provide(New, NewRepository),
)

func (s *Store) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// duplicate covers drivers that do not translate constraint errors.
func duplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}

func wrapWrite(action string, err error) error {
	if duplicate(err) {
		return fmt.Errorf("failed to %s: %w: %w", action, ErrDuplicate, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
