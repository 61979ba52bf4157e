package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/platform/db"
	"github.com/fatflowers/financeplus/pkg/types"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				if err := db.Migrate(s.db.WithContext(ctx)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", db.DialectName(s.db))
				return nil
			})
		},
	}
}

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "Show the plan catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				printPlans(cmd.OutOrStdout(), s.catalog.Plans())
				return nil
			})
		},
	}
}

func newActivateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <subscription-id>",
		Short: "Activate a pending subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				sub, err := s.subs.Activate(ctx, args[0], opts.actor)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), sub)
			})
		},
	}
}

func newExtendCmd(opts *options) *cobra.Command {
	var (
		amount int
		unit   string
	)
	cmd := &cobra.Command{
		Use:   "extend <subscription-id>",
		Short: "Push back the end of the current period",
		Example: `  subscriptionctl extend 0199... --amount 30 --unit days
  subscriptionctl extend 0199... --amount 1 --unit interval`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				sub, err := s.subs.Extend(ctx, subscription.ExtendInput{
					SubscriptionID: args[0],
					Amount:         amount,
					Unit:           unit,
					ExtendedBy:     opts.actor,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), sub)
			})
		},
	}
	cmd.Flags().IntVar(&amount, "amount", 1, "number of units")
	cmd.Flags().StringVar(&unit, "unit", string(types.ExtendUnitInterval), "days, interval, month or year")
	return cmd
}

func newCancelCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <subscription-id>",
		Short: "Cancel a subscription and fall back to the free plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				res, err := s.subs.Cancel(ctx, args[0], opts.actor)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func newGrantCmd(opts *options) *cobra.Command {
	var (
		userID, plan, interval, price, currency, method, notes string
	)
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Create and activate a subscription paid outside the system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := subscription.CreateManualInput{
				UserID:        userID,
				PlanID:        types.PlanID(plan),
				Interval:      types.Interval(interval),
				Currency:      currency,
				PaymentMethod: types.PaymentMethod(method),
				Notes:         notes,
				ActivatedBy:   opts.actor,
			}
			if price != "" {
				p, err := decimal.NewFromString(price)
				if err != nil {
					return fmt.Errorf("invalid --price %q: %w", price, err)
				}
				in.Price = &p
			}
			return withServices(cmd, func(ctx context.Context, s *services) error {
				grant, err := s.subs.CreateManual(ctx, in)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), grant)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&plan, "plan", "", "plan id")
	cmd.Flags().StringVar(&interval, "interval", string(types.IntervalMonth), "month or year")
	cmd.Flags().StringVar(&price, "price", "", "amount paid (default: catalog price)")
	cmd.Flags().StringVar(&currency, "currency", "", "currency (default: billing.default_currency)")
	cmd.Flags().StringVar(&method, "method", string(types.PaymentMethodManual), "payment method")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func newListCmd() *cobra.Command {
	var f subscription.Filter
	var status, plan string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subscriptions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Status = types.SubscriptionStatus(status)
			f.PlanID = types.PlanID(plan)
			return withServices(cmd, func(ctx context.Context, s *services) error {
				page, err := s.subs.Find(ctx, f)
				if err != nil {
					return err
				}
				printPage(cmd.OutOrStdout(), page)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&plan, "plan", "", "filter by plan")
	cmd.Flags().StringVar(&f.UserID, "user", "", "filter by user id")
	cmd.Flags().StringVar(&f.Search, "search", "", "match user name or email")
	cmd.Flags().IntVar(&f.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.Limit, "limit", subscription.DefaultPageLimit, "page size")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show subscription statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				stats, err := s.stats.SubscriptionStats(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
}
