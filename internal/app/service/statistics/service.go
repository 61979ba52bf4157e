package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/internal/platform/db"
	"github.com/fatflowers/financeplus/pkg/metrics"
	"github.com/fatflowers/financeplus/pkg/types"
)

// StatisticType names one section of the subscription report.
type StatisticType string

const (
	StatisticTypeByStatus          StatisticType = "by_status"
	StatisticTypeByPlan            StatisticType = "by_plan"
	StatisticTypeBySource          StatisticType = "by_source"
	StatisticTypeCreatedLast30Days StatisticType = "created_last_30_days"
	StatisticTypeRevenue           StatisticType = "revenue"
)

var statisticTypes = []StatisticType{
	StatisticTypeByStatus,
	StatisticTypeByPlan,
	StatisticTypeBySource,
	StatisticTypeCreatedLast30Days,
	StatisticTypeRevenue,
}

const (
	recentWindow = 30 * 24 * time.Hour
	revenueBatch = 200
	// unknownSource labels rows created before the source was recorded.
	unknownSource = "unknown"
)

// SubscriptionStats is the admin dashboard summary.
type SubscriptionStats struct {
	Total             int64                      `json:"total"`
	ByStatus          map[string]int64           `json:"by_status"`
	ByPlan            map[string]int64           `json:"by_plan"`
	BySource          map[string]int64           `json:"by_source"`
	CreatedLast30Days int64                      `json:"created_last_30_days"`
	Revenue           map[string]decimal.Decimal `json:"revenue"`
}

type groupCount struct {
	Label string
	Value int64
}

// Service provides statistics operations
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

func (s *Service) countBy(ctx context.Context, expr string) (map[string]int64, error) {
	var rows []groupCount
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Select(fmt.Sprintf("%s AS label, count(*) AS value", expr)).
		Group(expr).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		label := r.Label
		if label == "" {
			label = unknownSource
		}
		out[label] += r.Value
	}
	return out, nil
}

func (s *Service) getByStatus(ctx context.Context, stats *SubscriptionStats) error {
	counts, err := s.countBy(ctx, "status")
	if err != nil {
		return err
	}
	for _, st := range types.SubscriptionStatuses {
		if _, ok := counts[string(st)]; !ok {
			counts[string(st)] = 0
		}
	}
	stats.ByStatus = counts
	stats.Total = lo.Sum(lo.Values(counts))
	metrics.SetSubscriptionsByStatus(lo.Map(types.SubscriptionStatuses, func(st types.SubscriptionStatus, _ int) string { return string(st) }), counts)
	return nil
}

func (s *Service) getByPlan(ctx context.Context, stats *SubscriptionStats) (err error) {
	stats.ByPlan, err = s.countBy(ctx, "plan_id")
	return err
}

func (s *Service) getBySource(ctx context.Context, stats *SubscriptionStats) error {
	expr := fmt.Sprintf("COALESCE(%s, '')", db.JSONExtractTextExpr(s.db, "metadata", types.MetadataSource))
	counts, err := s.countBy(ctx, expr)
	if err != nil {
		return err
	}
	stats.BySource = counts
	return nil
}

func (s *Service) getCreatedLast30Days(ctx context.Context, stats *SubscriptionStats) error {
	return s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("created_at >= ?", s.now().Add(-recentWindow)).
		Count(&stats.CreatedLast30Days).Error
}

// getRevenue sums succeeded payments per currency. Payment history lives in a
// JSON column, so rows are streamed in batches and summed as decimals.
func (s *Service) getRevenue(ctx context.Context, stats *SubscriptionStats) error {
	revenue := map[string]decimal.Decimal{}
	var batch []*models.Subscription
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Select("id", "payment_history").
		FindInBatches(&batch, revenueBatch, func(_ *gorm.DB, _ int) error {
			for _, sub := range batch {
				for _, p := range sub.PaymentHistory {
					if p.Status != types.PaymentStatusSucceeded {
						continue
					}
					revenue[p.Currency] = revenue[p.Currency].Add(p.Amount)
				}
			}
			return nil
		})
	if res.Error != nil {
		return res.Error
	}
	stats.Revenue = revenue
	return nil
}

func (s *Service) collect(ctx context.Context, st StatisticType, stats *SubscriptionStats) error {
	switch st {
	case StatisticTypeByStatus:
		return s.getByStatus(ctx, stats)
	case StatisticTypeByPlan:
		return s.getByPlan(ctx, stats)
	case StatisticTypeBySource:
		return s.getBySource(ctx, stats)
	case StatisticTypeCreatedLast30Days:
		return s.getCreatedLast30Days(ctx, stats)
	case StatisticTypeRevenue:
		return s.getRevenue(ctx, stats)
	default:
		return fmt.Errorf("invalid statistic type: %s", st)
	}
}

// SubscriptionStats gathers every section concurrently. Each section writes
// its own field of the result.
func (s *Service) SubscriptionStats(ctx context.Context) (*SubscriptionStats, error) {
	stats := &SubscriptionStats{}
	var wg sync.WaitGroup
	errChan := make(chan error, len(statisticTypes))
	for _, st := range statisticTypes {
		wg.Add(1)
		go func(st StatisticType) {
			defer wg.Done()
			if err := s.collect(ctx, st, stats); err != nil {
				errChan <- fmt.Errorf("%s: %w", st, err)
			}
		}(st)
	}
	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		s.log.Errorw("failed to compute subscription statistics", "err", err)
		return nil, err
	}
	return stats, nil
}
