package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/financeplus/pkg/types"
)

func TestFind_FiltersSearchAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "u1", "Alice Souza", "alice@example.com")
	f.seedUser(t, "u2", "Bob", "bob@example.com")
	f.seedUser(t, "u3", "Carla", "carla@ALICE.dev")

	a := f.activePaid(t, "u1", types.PlanPro, types.IntervalMonth)
	f.clock.Advance(time.Minute)
	b, err := f.svc.RequestUpgrade(ctx, RequestUpgradeInput{UserID: "u2", PlanID: types.PlanBasic})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	c, err := f.svc.RequestUpgrade(ctx, RequestUpgradeInput{UserID: "u3", PlanID: types.PlanPro})
	require.NoError(t, err)

	page, err := f.svc.Find(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Equal(t, 1, page.Page)
	require.Equal(t, DefaultPageLimit, page.Limit)
	require.Equal(t, []string{c.ID, b.ID, a.ID}, []string{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})

	page, err = f.svc.Find(ctx, Filter{Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	require.Equal(t, a.ID, page.Items[0].ID)

	page, err = f.svc.Find(ctx, Filter{Status: types.SubscriptionStatusPending})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)

	page, err = f.svc.Find(ctx, Filter{PlanID: types.PlanPro, Status: types.SubscriptionStatusActive})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, a.ID, page.Items[0].ID)

	page, err = f.svc.Find(ctx, Filter{Search: "aLiCe"})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)
	require.Equal(t, c.ID, page.Items[0].ID)
	require.Equal(t, a.ID, page.Items[1].ID)

	page, err = f.svc.Find(ctx, Filter{Search: "alice", UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	page, err = f.svc.Find(ctx, Filter{Search: "nobody"})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.NotNil(t, page.Items)
	require.Equal(t, 0, page.TotalPages)

	_, err = f.svc.Find(ctx, Filter{Status: "paused"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestFilter_NormalizePage(t *testing.T) {
	tests := []struct {
		in                  Filter
		wantPage, wantLimit int
	}{
		{in: Filter{}, wantPage: 1, wantLimit: DefaultPageLimit},
		{in: Filter{Page: -3, Limit: -1}, wantPage: 1, wantLimit: DefaultPageLimit},
		{in: Filter{Page: 4, Limit: 25}, wantPage: 4, wantLimit: 25},
		{in: Filter{Limit: 1000}, wantPage: 1, wantLimit: MaxPageLimit},
	}
	for _, tt := range tests {
		page, limit := tt.in.NormalizePage()
		require.Equal(t, tt.wantPage, page)
		require.Equal(t, tt.wantLimit, limit)
	}
}

func TestFindExpiring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "u1", "Alice", "alice@example.com")
	f.seedUser(t, "u2", "Bob", "bob@example.com")
	monthly := f.activePaid(t, "u1", types.PlanPro, types.IntervalMonth)
	f.activePaid(t, "u2", types.PlanPro, types.IntervalYear)

	f.clock.Set(time.Date(2024, 4, 25, 10, 0, 0, 0, time.UTC))
	rows, err := f.svc.FindExpiring(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, monthly.ID, rows[0].ID)

	rows, err = f.svc.FindExpiring(ctx, 3)
	require.NoError(t, err)
	require.Empty(t, rows)

	_, err = f.svc.FindExpiring(ctx, 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCurrentAndEntitlementsForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "u1", "Alice", "alice@example.com")

	_, err := f.svc.CurrentForUser(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	ent, err := f.svc.EntitlementsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, types.PlanFree, ent.PlanID)
	require.Empty(t, ent.ID)
	require.True(t, IsActive(ent))
	require.Equal(t, int64(2), ent.LimitMap()[types.ResourceAccounts])

	// pending upgrades do not grant anything yet
	pending, err := f.svc.RequestUpgrade(ctx, RequestUpgradeInput{UserID: "u1", PlanID: types.PlanEnterprise})
	require.NoError(t, err)
	ent, err = f.svc.EntitlementsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, types.PlanFree, ent.PlanID)

	_, err = f.svc.Activate(ctx, pending.ID, "admin-1")
	require.NoError(t, err)
	cur, err := f.svc.CurrentForUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, pending.ID, cur.ID)
	ent, err = f.svc.EntitlementsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, pending.ID, ent.ID)
}

func TestEntitlementsForUser_CacheHit(t *testing.T) {
	c := newFakeCache()
	f := newFixture(t, WithCache(c))
	ctx := context.Background()

	cached := f.svc.freeSnapshot("u9")
	cached.PlanID = types.PlanPremium
	require.NoError(t, c.Set(ctx, "u9", 0, cached))

	got, err := f.svc.EntitlementsForUser(ctx, "u9")
	require.NoError(t, err)
	require.Same(t, cached, got)
}

func TestEntitlementsForUser_FillAfterInvalidationIsDropped(t *testing.T) {
	c := newFakeCache()
	f := newFixture(t, WithCache(c))
	ctx := context.Background()
	f.seedUser(t, "u1", "Alice", "alice@example.com")

	// a write commits between the cache miss and the fill
	c.afterGet = func(userID string) { _ = c.Invalidate(ctx, userID) }
	ent, err := f.svc.EntitlementsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, types.PlanFree, ent.PlanID)
	cached, _, _ := c.Get(ctx, "u1")
	require.Nil(t, cached)

	c.afterGet = nil
	_, err = f.svc.EntitlementsForUser(ctx, "u1")
	require.NoError(t, err)
	cached, _, _ = c.Get(ctx, "u1")
	require.NotNil(t, cached)
}
