package db

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	cfgpkg "github.com/fatflowers/financeplus/pkg/config"
	gormzap "github.com/fatflowers/financeplus/pkg/gormlog"
)

// NewDB opens the configured database. SQLite is limited to one open
// connection because it serializes writers anyway.
func NewDB(l *zap.SugaredLogger, cfg *cfgpkg.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		l.Error("database DSN is empty")
		return nil, gorm.ErrInvalidDB
	}
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case cfgpkg.DBDriverSQLite:
		dialector = sqlite.Open(cfg.Database.DSN)
	case cfgpkg.DBDriverPostgres, "":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormzap.New(l, cfg.Database.SlowThreshold),
		TranslateError: true,
	})
	if err != nil {
		l.Errorf("failed to connect database: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if IsSQLite(db) {
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.Database.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		}
		if cfg.Database.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		}
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	l.Infow("connected to database", "driver", DialectName(db))
	return db, nil
}

var Module = fx.Options(
	fx.Provide(NewDB),
	fx.Invoke(autoMigrate),
	fx.Invoke(registerDBClose),
)

func autoMigrate(l *zap.SugaredLogger, cfg *cfgpkg.Config, db *gorm.DB) error {
	if !cfg.Database.AutoMigrate {
		return nil
	}
	if err := Migrate(db); err != nil {
		l.Errorf("automigrate failed: %v", err)
		return err
	}
	l.Infow("automigrate completed")
	return nil
}

// registerDBClose ensures the underlying *sql.DB is closed on shutdown
func registerDBClose(lc fx.Lifecycle, l *zap.SugaredLogger, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				l.Warnw("gorm: get sql.DB failed", "err", err)
				return nil
			}
			l.Infow("closing database connection pool")
			return sqlDB.Close()
		},
	})
}
