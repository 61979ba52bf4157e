package subscription

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/store"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/config"
	"github.com/fatflowers/financeplus/pkg/logctx"
	"github.com/fatflowers/financeplus/pkg/metrics"
	"github.com/fatflowers/financeplus/pkg/tool"
	"github.com/fatflowers/financeplus/pkg/types"
)

// EntitlementCache caches the subscription that currently grants a user's
// entitlements. Get returns nil on a miss together with the user's
// invalidation generation; Set stores only while that generation is current.
type EntitlementCache interface {
	Get(ctx context.Context, userID string) (*models.Subscription, int64, error)
	Set(ctx context.Context, userID string, generation int64, sub *models.Subscription) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// Service owns the subscription lifecycle. Every write runs in one
// transaction together with its audit log rows and the user projection sync.
type Service struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	repo    store.Repository
	cache   EntitlementCache
	log     *zap.SugaredLogger
	now     func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCache(c EntitlementCache) Option {
	return func(s *Service) { s.cache = c }
}

func NewService(cfg *config.Config, cat *catalog.Catalog, repo store.Repository, log *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{cfg: cfg, catalog: cat, repo: repo, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Service) defaultCurrency() string {
	if s.cfg != nil && s.cfg.Billing.DefaultCurrency != "" {
		return s.cfg.Billing.DefaultCurrency
	}
	return "BRL"
}

// inTx runs fn in a transaction and classifies the resulting error.
func (s *Service) inTx(ctx context.Context, op string, fn func(tx store.Repository) error) error {
	start := time.Now()
	err := classify(s.repo.Transaction(ctx, fn))
	metrics.ObserveBusinessProcess("subscription", op, time.Since(start))
	metrics.IncSubscriptionOperation(op, Kind(err))
	if err != nil {
		lg := logctx.FromCtx(ctx, s.log)
		if Kind(err) == "infrastructure" {
			lg.Errorw("subscription operation failed", "op", op, "err", err)
		} else {
			lg.Infow("subscription operation rejected", "op", op, "kind", Kind(err), "err", err)
		}
	}
	return err
}

// afterCommit drops cached entitlements of the affected users.
func (s *Service) afterCommit(ctx context.Context, userIDs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("failed to invalidate entitlement cache", "user_ids", userIDs, "err", err)
	}
}

func (s *Service) newSubscription(userID string, planID types.PlanID, interval types.Interval, status types.SubscriptionStatus, now time.Time, source string) *models.Subscription {
	return &models.Subscription{
		ID:             tool.GenerateUUIDV7(),
		UserID:         userID,
		PlanID:         planID,
		Status:         status,
		Interval:       interval,
		Limits:         datatypes.NewJSONType(s.catalog.LimitsFor(planID)),
		Features:       datatypes.JSONSlice[string](s.catalog.FeaturesFor(planID)),
		PaymentHistory: datatypes.JSONSlice[models.PaymentRecord]{},
		Metadata:       datatypes.JSONMap{types.MetadataSource: source},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// freeSnapshot is the catalog free plan presented when a user has no current subscription.
func (s *Service) freeSnapshot(userID string) *models.Subscription {
	return &models.Subscription{
		UserID:   userID,
		PlanID:   types.PlanFree,
		Status:   types.SubscriptionStatusActive,
		Interval: types.IntervalMonth,
		Limits:   datatypes.NewJSONType(s.catalog.LimitsFor(types.PlanFree)),
		Features: datatypes.JSONSlice[string](s.catalog.FeaturesFor(types.PlanFree)),
	}
}

func (s *Service) record(ctx context.Context, tx store.Repository, action types.SubscriptionAction, actor string, before, after *models.Subscription, extra datatypes.JSONMap) error {
	ref := after
	if ref == nil {
		ref = before
	}
	if extra == nil {
		extra = datatypes.JSONMap{}
	}
	return tx.CreateSubscriptionLog(ctx, &models.SubscriptionLog{
		ID:             tool.GenerateUUIDV7(),
		SubscriptionID: ref.ID,
		UserID:         ref.UserID,
		Action:         action,
		ActorID:        actor,
		Before:         datatypes.NewJSONType(before),
		After:          datatypes.NewJSONType(after),
		Extra:          extra,
		CreatedAt:      s.now(),
	})
}

// syncUser overwrites the user's cached entitlements with sub's snapshot.
func (s *Service) syncUser(ctx context.Context, tx store.Repository, sub *models.Subscription) error {
	return tx.SyncUserEntitlements(ctx, sub.UserID, store.UserProjection{
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		Limits:         sub.LimitMap(),
		Features:       append([]string{}, sub.FeatureList()...),
	})
}

// refreshProjection resyncs the user projection after sub changed. The
// projection follows the user's current subscription. When it pointed at sub
// and no current subscription remains, the free plan values apply.
func (s *Service) refreshProjection(ctx context.Context, tx store.Repository, sub *models.Subscription) error {
	cur, err := tx.FindCurrentSubscription(ctx, sub.UserID)
	if err != nil {
		return err
	}
	if cur != nil && cur.ID == sub.ID {
		return s.syncUser(ctx, tx, cur)
	}
	u, err := tx.GetUser(ctx, sub.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if u.SubscriptionID == nil || *u.SubscriptionID != sub.ID {
		return nil
	}
	if cur == nil {
		cur = s.freeSnapshot(sub.UserID)
	}
	return s.syncUser(ctx, tx, cur)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
