package subscription

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/store"
	"github.com/fatflowers/financeplus/internal/platform/cache"
	"github.com/fatflowers/financeplus/pkg/config"
)

func newCachedService(cfg *config.Config, cat *catalog.Catalog, repo store.Repository, log *zap.SugaredLogger, c *cache.EntitlementCache) *Service {
	var opts []Option
	if c.Enabled() {
		opts = append(opts, WithCache(c))
	}
	return NewService(cfg, cat, repo, log, opts...)
}

// Module exposes the subscription service via Fx.
var Module = fx.Options(
	fx.Provide(newCachedService),
)
