package subscription

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/store"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/internal/platform/db/dbtest"
	"github.com/fatflowers/financeplus/pkg/types"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc   *Service
	db    *gorm.DB
	repo  store.Repository
	clock *testClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	repo := store.NewRepository(store.New(conn))
	clock := &testClock{now: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	svc := NewService(nil, catalog.Default(), repo, zap.NewNop().Sugar(), opts...)
	return &fixture{svc: svc, db: conn, repo: repo, clock: clock}
}

func (f *fixture) seedUser(t *testing.T, id, name, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:       id,
		Name:     name,
		Email:    email,
		Role:     types.RoleUser,
		IsActive: true,
		PlanID:   types.PlanFree,
	}
	require.NoError(t, f.repo.CreateUser(context.Background(), u))
	return u
}

// seedFree gives the user the active free subscription every account starts with.
func (f *fixture) seedFree(t *testing.T, userID string) *models.Subscription {
	t.Helper()
	ctx := context.Background()
	var free *models.Subscription
	require.NoError(t, f.repo.Transaction(ctx, func(tx store.Repository) error {
		var err error
		free, err = f.svc.ensureFree(ctx, tx, userID, f.clock.Now())
		if err != nil {
			return err
		}
		return f.svc.syncUser(ctx, tx, free)
	}))
	return free
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.repo.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) logs(t *testing.T, subscriptionID string) []models.SubscriptionLog {
	t.Helper()
	var rows []models.SubscriptionLog
	require.NoError(t, f.db.Where("subscription_id = ?", subscriptionID).Order("created_at asc, id asc").Find(&rows).Error)
	return rows
}

// activePaid requests and activates plan for a freshly seeded user.
func (f *fixture) activePaid(t *testing.T, userID string, plan types.PlanID, interval types.Interval) *models.Subscription {
	t.Helper()
	ctx := context.Background()
	pending, err := f.svc.RequestUpgrade(ctx, RequestUpgradeInput{UserID: userID, PlanID: plan, Interval: interval})
	require.NoError(t, err)
	active, err := f.svc.Activate(ctx, pending.ID, "admin-1")
	require.NoError(t, err)
	return active
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]*models.Subscription
	generations map[string]int64
	invalidated []string
	// afterGet runs once a lookup returns, outside the lock.
	afterGet func(userID string)
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*models.Subscription{}, generations: map[string]int64{}}
}

func (c *fakeCache) Get(_ context.Context, userID string) (*models.Subscription, int64, error) {
	c.mu.Lock()
	sub, gen := c.entries[userID], c.generations[userID]
	c.mu.Unlock()
	if c.afterGet != nil {
		c.afterGet(userID)
	}
	return sub, gen, nil
}

func (c *fakeCache) Set(_ context.Context, userID string, generation int64, sub *models.Subscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] == generation {
		c.entries[userID] = sub
	}
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.entries, id)
		c.generations[id]++
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}
