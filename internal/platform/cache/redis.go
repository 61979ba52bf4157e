package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/financeplus/pkg/config"
)

const connectTimeout = 5 * time.Second

// NewClient connects to the configured redis server. It returns a nil client
// when no URL is configured; the entitlement cache is then disabled.
func NewClient(lc fx.Lifecycle, l *zap.SugaredLogger, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		l.Infow("redis url not configured, entitlement cache disabled")
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}
	l.Infow("connected to redis", "addr", opts.Addr, "db", opts.DB)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				l.Infow("closing redis client")
				return client.Close()
			},
		})
	}
	return client, nil
}

var Module = fx.Options(
	fx.Provide(NewClient, NewEntitlementCache),
)
