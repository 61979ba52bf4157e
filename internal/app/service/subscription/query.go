package subscription

import (
	"context"
	"fmt"

	"github.com/fatflowers/financeplus/internal/app/store"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/logctx"
	"github.com/fatflowers/financeplus/pkg/metrics"
	"github.com/fatflowers/financeplus/pkg/types"
)

func (s *Service) Get(ctx context.Context, id string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return sub, nil
}

// CurrentForUser returns the user's newest active or trialing subscription.
func (s *Service) CurrentForUser(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repo.FindCurrentSubscription(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: user %s has no current subscription", ErrNotFound, userID)
	}
	return sub, nil
}

// EntitlementsForUser resolves the subscription whose snapshot governs the
// user's access. Without a current subscription the catalog free plan applies.
func (s *Service) EntitlementsForUser(ctx context.Context, userID string) (*models.Subscription, error) {
	lg := logctx.FromCtx(ctx, s.log)
	var generation int64
	if s.cache != nil {
		sub, gen, err := s.cache.Get(ctx, userID)
		switch {
		case err != nil:
			metrics.IncCacheRequest("error")
			lg.Warnw("failed to read entitlement cache", "err", err)
		case sub != nil:
			metrics.IncCacheRequest("hit")
			return sub, nil
		default:
			metrics.IncCacheRequest("miss")
		}
		generation = gen
	}

	sub, err := s.repo.FindCurrentSubscription(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	if sub == nil {
		sub = s.freeSnapshot(userID)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, generation, sub); err != nil {
			lg.Warnw("failed to write entitlement cache", "err", err)
		}
	}
	return sub, nil
}

// NormalizePage applies the default and maximum page size.
func (f Filter) NormalizePage() (page, limit int) {
	page, limit = f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return page, min(limit, MaxPageLimit)
}

func (f Filter) filters() []*types.CommonFilter {
	var out []*types.CommonFilter
	eq := func(field string, v string) {
		if v != "" {
			out = append(out, &types.CommonFilter{Field: "subscriptions." + field, Operator: types.CommonFilterOperatorEq, Values: []any{v}})
		}
	}
	eq("status", string(f.Status))
	eq("plan_id", string(f.PlanID))
	eq("user_id", f.UserID)
	return out
}

// Find lists subscriptions newest first.
func (s *Service) Find(ctx context.Context, f Filter) (*Page, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, validationf("invalid status %q", f.Status)
	}
	page, limit := f.NormalizePage()
	items, total, err := s.repo.ListSubscriptions(ctx, store.ListQuery{
		Filters: f.filters(),
		Search:  f.Search,
		Offset:  (page - 1) * limit,
		Limit:   limit,
	})
	if err != nil {
		return nil, classify(err)
	}
	if items == nil {
		items = []*models.Subscription{}
	}
	return &Page{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// FindExpiring lists active subscriptions ending within the next days.
func (s *Service) FindExpiring(ctx context.Context, days int) ([]*models.Subscription, error) {
	if days < 1 {
		return nil, validationf("days must be at least 1, got %d", days)
	}
	now := s.now()
	rows, err := s.repo.ListExpiring(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}
