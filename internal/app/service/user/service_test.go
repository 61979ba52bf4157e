package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/app/store"
	"github.com/fatflowers/financeplus/internal/platform/db/dbtest"
	"github.com/fatflowers/financeplus/pkg/types"
)

type recordingInvalidator struct{ ids []string }

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...string) error {
	r.ids = append(r.ids, ids...)
	return nil
}

func newServices(t *testing.T) (*Service, *subscription.Service) {
	repo := store.NewRepository(store.New(dbtest.Open(t)))
	log := zap.NewNop().Sugar()
	cat := catalog.Default()
	return NewService(repo, cat, log), subscription.NewService(nil, cat, repo, log)
}

func TestCreate(t *testing.T) {
	users, _ := newServices(t)
	ctx := context.Background()

	u, err := users.Create(ctx, CreateInput{Name: " Alice ", Email: "Alice@Example.com", PasswordHash: "x"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "Alice", u.Name)
	require.Equal(t, "alice@example.com", u.Email)
	require.Equal(t, types.RoleUser, u.Role)
	require.True(t, u.IsActive)
	require.Equal(t, types.PlanFree, u.PlanID)
	require.Equal(t, int64(2), u.Limits.Data()[types.ResourceAccounts])

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, "x", got.PasswordHash)

	_, err = users.Create(ctx, CreateInput{Name: "Other", Email: "alice@example.com"})
	require.ErrorIs(t, err, subscription.ErrConflict)
}

func TestCreate_Validation(t *testing.T) {
	users, _ := newServices(t)
	ctx := context.Background()
	for name, in := range map[string]CreateInput{
		"no name":   {Email: "a@example.com"},
		"bad email": {Name: "A", Email: "not-an-email"},
		"bad role":  {Name: "A", Email: "a@example.com", Role: "owner"},
	} {
		_, err := users.Create(ctx, in)
		require.ErrorIs(t, err, subscription.ErrValidation, name)
	}
}

func TestDelete_CascadesSubscriptions(t *testing.T) {
	users, subs := newServices(t)
	inv := &recordingInvalidator{}
	users.WithInvalidator(inv)
	ctx := context.Background()

	u, err := users.Create(ctx, CreateInput{ID: "u1", Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	pending, err := subs.RequestUpgrade(ctx, subscription.RequestUpgradeInput{UserID: u.ID, PlanID: types.PlanPro})
	require.NoError(t, err)
	_, err = subs.Cancel(ctx, pending.ID, u.ID)
	require.NoError(t, err)

	removed, err := users.Delete(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)
	require.Equal(t, []string{"u1"}, inv.ids)

	_, err = subs.Get(ctx, pending.ID)
	require.ErrorIs(t, err, subscription.ErrNotFound)
	_, err = users.FindByID(ctx, u.ID)
	require.ErrorIs(t, err, subscription.ErrNotFound)
	_, err = users.Delete(ctx, u.ID)
	require.ErrorIs(t, err, subscription.ErrNotFound)
}
