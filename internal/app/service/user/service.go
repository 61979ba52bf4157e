package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/app/store"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/internal/platform/cache"
	"github.com/fatflowers/financeplus/pkg/logctx"
	"github.com/fatflowers/financeplus/pkg/tool"
	"github.com/fatflowers/financeplus/pkg/types"
)

// CreateInput carries an account created by the account system. The password
// is hashed by the caller.
type CreateInput struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         types.Role `json:"role"`
}

// Invalidator drops cached entitlements after a user is removed.
type Invalidator interface {
	Invalidate(ctx context.Context, userIDs ...string) error
}

type Service struct {
	repo    store.Repository
	catalog *catalog.Catalog
	cache   Invalidator
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewService(repo store.Repository, cat *catalog.Catalog, log *zap.SugaredLogger) *Service {
	return &Service{repo: repo, catalog: cat, log: log, now: time.Now}
}

// WithInvalidator sets the cache cleared by Delete.
func (s *Service) WithInvalidator(c Invalidator) *Service {
	s.cache = c
	return s
}

func (s *Service) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", subscription.ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", subscription.ErrInfrastructure, err)
	}
	return u, nil
}

// Create stores an active user whose cached entitlements are the catalog free plan.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", subscription.ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", subscription.ErrValidation, in.Email)
	}
	if in.Role == "" {
		in.Role = types.RoleUser
	}
	if in.Role != types.RoleUser && !in.Role.Privileged() {
		return nil, fmt.Errorf("%w: invalid role %q", subscription.ErrValidation, in.Role)
	}
	if in.ID == "" {
		in.ID = tool.GenerateUUIDV7()
	}
	now := s.now()
	u := &models.User{
		ID:           in.ID,
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		IsActive:     true,
		PlanID:       types.PlanFree,
		Limits:       datatypes.NewJSONType(s.catalog.LimitsFor(types.PlanFree)),
		Features:     datatypes.JSONSlice[string](s.catalog.FeaturesFor(types.PlanFree)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email %s already registered", subscription.ErrConflict, u.Email)
		}
		return nil, fmt.Errorf("%w: %w", subscription.ErrInfrastructure, err)
	}
	return u, nil
}

// Delete removes the user together with all of their subscriptions. It
// returns the number of subscriptions removed.
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	removed, err := s.repo.DeleteUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("%w: %w", subscription.ErrNotFound, err)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", subscription.ErrInfrastructure, err)
	}
	lg := logctx.FromCtx(ctx, s.log)
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			lg.Warnw("failed to invalidate entitlement cache", "user_id", id, "err", err)
		}
	}
	lg.Infow("user deleted", "deleted_user_id", id, "subscriptions_removed", removed)
	return removed, nil
}

func newCachedService(repo store.Repository, cat *catalog.Catalog, log *zap.SugaredLogger, c *cache.EntitlementCache) *Service {
	s := NewService(repo, cat, log)
	if c.Enabled() {
		s.WithInvalidator(c)
	}
	return s
}

var Module = fx.Options(
	fx.Provide(newCachedService),
)
