package catalog

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fatflowers/financeplus/pkg/config"
	"github.com/fatflowers/financeplus/pkg/types"
)

var ErrUnknownPlan = errors.New("unknown plan")

// Plan is a named tier with default limits, features and list prices.
type Plan struct {
	ID           types.PlanID    `json:"id"`
	Name         string          `json:"name"`
	Limits       types.Limits    `json:"limits"`
	Features     []string        `json:"features"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	YearlyPrice  decimal.Decimal `json:"yearly_price"`
	Currency     string          `json:"currency"`
	Popular      bool            `json:"popular"`
}

// Price returns the list price for one interval.
func (p Plan) Price(interval types.Interval) decimal.Decimal {
	if interval == types.IntervalYear {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}

func (p Plan) clone() Plan {
	p.Limits = p.Limits.Clone()
	p.Features = append([]string{}, p.Features...)
	return p
}

// Catalog is the authoritative plan table. It is immutable after construction.
type Catalog struct {
	plans map[types.PlanID]Plan
	order []types.PlanID
}

// New builds the catalog from the built-in plans and the configured overrides.
func New(cfg *config.Config, log *zap.SugaredLogger) (*Catalog, error) {
	currency := "BRL"
	if cfg != nil && cfg.Billing.DefaultCurrency != "" {
		currency = cfg.Billing.DefaultCurrency
	}
	c := fromPlans(defaultPlans(currency))
	if cfg == nil {
		return c, nil
	}
	for _, pc := range cfg.Plans {
		p, err := planFromConfig(pc, currency)
		if err != nil {
			return nil, err
		}
		if _, ok := c.plans[p.ID]; !ok {
			c.order = append(c.order, p.ID)
		}
		c.plans[p.ID] = p
		if log != nil {
			log.Infow("plan overridden from config", "plan_id", p.ID)
		}
	}
	if _, ok := c.plans[types.PlanFree]; !ok {
		return nil, fmt.Errorf("catalog has no %s plan", types.PlanFree)
	}
	return c, nil
}

// Default returns the built-in catalog priced in BRL.
func Default() *Catalog {
	return fromPlans(defaultPlans("BRL"))
}

func fromPlans(plans []Plan) *Catalog {
	c := &Catalog{plans: make(map[types.PlanID]Plan, len(plans))}
	for _, p := range plans {
		c.plans[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

func planFromConfig(pc *config.PlanConfig, currency string) (Plan, error) {
	monthly, yearly, err := pc.Prices()
	if err != nil {
		return Plan{}, err
	}
	limits := types.Limits{}
	for k, v := range pc.Limits {
		if v < types.Unlimited {
			return Plan{}, fmt.Errorf("plan %s: invalid limit %d for %s", pc.ID, v, k)
		}
		limits[k] = v
	}
	return Plan{
		ID:           types.PlanID(pc.ID),
		Name:         lo.Ternary(pc.Name != "", pc.Name, pc.ID),
		Limits:       limits,
		Features:     lo.Uniq(pc.Features),
		MonthlyPrice: monthly,
		YearlyPrice:  yearly,
		Currency:     currency,
	}, nil
}

// planOrFree never fails; unknown ids resolve to the free plan.
func (c *Catalog) planOrFree(id types.PlanID) Plan {
	if p, ok := c.plans[id]; ok {
		return p
	}
	return c.plans[types.PlanFree]
}

// LimitsFor returns a copy of the plan's limits, falling back to free.
func (c *Catalog) LimitsFor(id types.PlanID) types.Limits {
	return c.planOrFree(id).Limits.Clone()
}

// FeaturesFor returns a copy of the plan's features, falling back to free.
func (c *Catalog) FeaturesFor(id types.PlanID) []string {
	return append([]string{}, c.planOrFree(id).Features...)
}

func (c *Catalog) Lookup(id types.PlanID) (Plan, bool) {
	p, ok := c.plans[id]
	if !ok {
		return Plan{}, false
	}
	return p.clone(), true
}

func (c *Catalog) Validate(id types.PlanID) error {
	if _, ok := c.plans[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, id)
	}
	return nil
}

// Plans lists the plans in tier order.
func (c *Catalog) Plans() []Plan {
	return lo.Map(c.order, func(id types.PlanID, _ int) Plan { return c.plans[id].clone() })
}
