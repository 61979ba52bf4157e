package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/financeplus/internal/app"
	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/service/statistics"
	"github.com/fatflowers/financeplus/internal/app/service/subscription"
)

type options struct {
	configFile string
	actor      string
}

// services are the pieces of the core a command works with.
type services struct {
	db      *gorm.DB
	log     *zap.SugaredLogger
	catalog *catalog.Catalog
	subs    *subscription.Service
	stats   *statistics.Service
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "subscriptionctl",
		Short:         "Administer FinancePlus subscriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configFile != "" {
				return os.Setenv("APP_CONFIG_FILE", opts.configFile)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (default ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.actor, "actor", "subscriptionctl", "actor recorded in the audit log")

	root.AddCommand(
		newMigrateCmd(),
		newPlansCmd(),
		newActivateCmd(opts),
		newExtendCmd(opts),
		newCancelCmd(opts),
		newGrantCmd(opts),
		newListCmd(),
		newStatsCmd(),
	)
	return root
}

// withServices starts the core fx graph, runs fn and stops the graph again.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, s *services) error) error {
	s := &services{}
	a := fx.New(
		app.CoreModule,
		fx.NopLogger,
		fx.Invoke(func(db *gorm.DB, log *zap.SugaredLogger, cat *catalog.Catalog, subs *subscription.Service, stats *statistics.Service) {
			*s = services{db: db, log: log, catalog: cat, subs: subs, stats: stats}
		}),
	)
	if err := a.Err(); err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	startCtx, cancel := context.WithTimeout(ctx, app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
		defer cancel()
		if err := a.Stop(stopCtx); err != nil {
			s.log.Warnw("failed to stop app", "err", err)
		}
	}()
	return fn(ctx, s)
}
