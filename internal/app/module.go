package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/financeplus/internal/app/api/server"
	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/service/statistics"
	"github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/app/service/user"
	"github.com/fatflowers/financeplus/internal/app/store"
	"github.com/fatflowers/financeplus/internal/platform/cache"
	"github.com/fatflowers/financeplus/internal/platform/db"
	"github.com/fatflowers/financeplus/pkg/config"
	"github.com/fatflowers/financeplus/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// CoreModule provides storage and the services without any transport.
var CoreModule = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cache.Module,
	store.Module,
	catalog.Module,
	subscription.Module,
	statistics.Module,
	user.Module,
)

var Module = fx.Options(
	CoreModule,
	server.Module,
)
