package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"

	"github.com/fatflowers/financeplus/internal/app/store"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/logctx"
	"github.com/fatflowers/financeplus/pkg/tool"
	"github.com/fatflowers/financeplus/pkg/types"
)

func (s *Service) validatePaidPlan(planID types.PlanID, interval types.Interval) error {
	if err := s.catalog.Validate(planID); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !interval.Valid() {
		return validationf("invalid interval %q", interval)
	}
	return nil
}

// RequestUpgrade creates a pending subscription for a paid plan. A live free
// subscription is cancelled first; any other live subscription is a conflict.
// The user's cached entitlements stay on the free plan until activation.
func (s *Service) RequestUpgrade(ctx context.Context, in RequestUpgradeInput) (*models.Subscription, error) {
	if in.Interval == "" {
		in.Interval = types.IntervalMonth
	}
	if in.UserID == "" {
		return nil, validationf("user id is required")
	}
	if in.PlanID == types.PlanFree {
		return nil, validationf("cannot request an upgrade to the %s plan", types.PlanFree)
	}
	if err := s.validatePaidPlan(in.PlanID, in.Interval); err != nil {
		return nil, err
	}

	now := s.now()
	var created *models.Subscription
	err := s.inTx(ctx, "request_upgrade", func(tx store.Repository) error {
		if _, err := tx.GetUser(ctx, in.UserID); err != nil {
			return err
		}
		if err := s.neutralizeLiveFree(ctx, tx, in.UserID, in.UserID, now); err != nil {
			return err
		}
		sub := s.newSubscription(in.UserID, in.PlanID, in.Interval, types.SubscriptionStatusPending, now, types.SourceUserRequest)
		sub.RequestedAt = &now
		if in.Note != "" {
			sub.Metadata[types.MetadataNote] = in.Note
		}
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			return err
		}
		created = sub
		return s.record(ctx, tx, types.SubscriptionActionRequest, in.UserID, nil, sub, nil)
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, in.UserID)
	logctx.FromCtx(ctx, s.log).Infow("subscription upgrade requested", "subscription_id", created.ID, "plan_id", created.PlanID)
	return created, nil
}

// neutralizeLiveFree cancels the user's live free subscription so a new one
// can be created. A live subscription on any other plan is a conflict.
func (s *Service) neutralizeLiveFree(ctx context.Context, tx store.Repository, userID, actor string, now time.Time) error {
	live, err := tx.FindLiveSubscription(ctx, userID)
	if err != nil || live == nil {
		return err
	}
	if live.PlanID != types.PlanFree {
		return fmt.Errorf("%w: user %s already has a %s subscription on plan %s", ErrConflict, userID, live.Status, live.PlanID)
	}
	_, err = s.cancelRow(ctx, tx, live, actor, now, types.SubscriptionActionNeutralize)
	return err
}

// Activate moves a pending subscription to active and starts its first period.
// The status-guarded update makes concurrent activations race safely: only
// one of them matches the pending row.
func (s *Service) Activate(ctx context.Context, subscriptionID, activatedBy string) (*models.Subscription, error) {
	now := s.now()
	var activated *models.Subscription
	err := s.inTx(ctx, "activate", func(tx store.Repository) error {
		sub, err := s.activateInTx(ctx, tx, subscriptionID, activatedBy, now)
		if err != nil {
			return err
		}
		activated = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, activated.UserID)
	return activated, nil
}

func (s *Service) activateInTx(ctx context.Context, tx store.Repository, subscriptionID, activatedBy string, now time.Time) (*models.Subscription, error) {
	before, err := tx.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if before.Status != types.SubscriptionStatusPending {
		return nil, fmt.Errorf("%w: cannot activate a %s subscription", ErrInvalidState, before.Status)
	}
	end := AddInterval(now, before.Interval, 1)
	ok, err := tx.UpdateSubscription(ctx, subscriptionID,
		store.Guard{Statuses: []types.SubscriptionStatus{types.SubscriptionStatusPending}},
		map[string]any{
			"status":               types.SubscriptionStatusActive,
			"current_period_start": now,
			"current_period_end":   end,
			"activated_at":         now,
			"activated_by":         optional(activatedBy),
			"updated_at":           now,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: subscription %s is no longer pending", ErrInvalidState, subscriptionID)
	}
	after, err := tx.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, tx, types.SubscriptionActionActivate, activatedBy, before, after, nil); err != nil {
		return nil, err
	}
	if err := s.syncUser(ctx, tx, after); err != nil {
		return nil, err
	}
	return after, nil
}

// Extend pushes the period end of an active or trialing subscription forward.
// A subscription without an end is extended from now.
func (s *Service) Extend(ctx context.Context, in ExtendInput) (*models.Subscription, error) {
	if in.Amount < 1 {
		return nil, validationf("amount must be at least 1, got %d", in.Amount)
	}
	now := s.now()
	var extended *models.Subscription
	err := s.inTx(ctx, "extend", func(tx store.Repository) error {
		before, err := tx.GetSubscription(ctx, in.SubscriptionID)
		if err != nil {
			return err
		}
		if !before.Status.Entitled() {
			return fmt.Errorf("%w: cannot extend a %s subscription", ErrInvalidState, before.Status)
		}
		unit, ok := types.ParseExtendUnit(in.Unit, before.Interval)
		if !ok {
			return validationf("invalid extend unit %q", in.Unit)
		}

		base := now
		if before.CurrentPeriodEnd != nil {
			base = *before.CurrentPeriodEnd
		}
		end := base.AddDate(0, 0, in.Amount)
		if unit == types.ExtendUnitInterval {
			end = AddInterval(base, before.Interval, in.Amount)
		}

		updated, err := tx.UpdateSubscription(ctx, before.ID,
			store.Guard{Statuses: types.EntitledSubscriptionStatuses, Version: before.Version},
			map[string]any{
				"current_period_end": end,
				"extended_at":        now,
				"extended_by":        optional(in.ExtendedBy),
				"updated_at":         now,
			})
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("%w: subscription %s changed concurrently", ErrConflict, before.ID)
		}
		if extended, err = tx.GetSubscription(ctx, before.ID); err != nil {
			return err
		}
		return s.record(ctx, tx, types.SubscriptionActionExtend, in.ExtendedBy, before, extended,
			datatypes.JSONMap{"amount": in.Amount, "unit": string(unit)})
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, extended.UserID)
	return extended, nil
}

// Cancel cancels the subscription and, in the same transaction, falls the
// user back to an active free subscription.
func (s *Service) Cancel(ctx context.Context, subscriptionID, actingUserID string) (*CancelResult, error) {
	now := s.now()
	res := &CancelResult{}
	err := s.inTx(ctx, "cancel", func(tx store.Repository) error {
		sub, err := tx.GetSubscription(ctx, subscriptionID)
		if err != nil {
			return err
		}
		res.Cancelled, res.Free, err = s.cancelInTx(ctx, tx, sub, actingUserID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, res.Cancelled.UserID)
	logctx.FromCtx(ctx, s.log).Infow("subscription cancelled", "subscription_id", res.Cancelled.ID, "plan_id", res.Cancelled.PlanID)
	return res, nil
}

func (s *Service) cancelInTx(ctx context.Context, tx store.Repository, sub *models.Subscription, actor string, now time.Time) (*models.Subscription, *models.Subscription, error) {
	if sub.Status == types.SubscriptionStatusCancelled {
		return nil, nil, fmt.Errorf("%w: %s", ErrAlreadyCancelled, sub.ID)
	}
	cancelled, err := s.cancelRow(ctx, tx, sub, actor, now, types.SubscriptionActionCancel)
	if err != nil {
		return nil, nil, err
	}
	free, err := s.ensureFree(ctx, tx, sub.UserID, now)
	if err != nil {
		return nil, nil, err
	}
	if free != nil {
		err = s.syncUser(ctx, tx, free)
	} else {
		err = s.refreshProjection(ctx, tx, cancelled)
	}
	if err != nil {
		return nil, nil, err
	}
	return cancelled, free, nil
}

// cancelRow marks sub cancelled. The period end is kept as is.
func (s *Service) cancelRow(ctx context.Context, tx store.Repository, sub *models.Subscription, actor string, now time.Time, action types.SubscriptionAction) (*models.Subscription, error) {
	ok, err := tx.UpdateSubscription(ctx, sub.ID,
		store.Guard{NotStatuses: []types.SubscriptionStatus{types.SubscriptionStatusCancelled}},
		map[string]any{
			"status":       types.SubscriptionStatusCancelled,
			"cancelled_at": now,
			"cancelled_by": optional(actor),
			"updated_at":   now,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCancelled, sub.ID)
	}
	after, err := tx.GetSubscription(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, tx, action, actor, sub, after, nil); err != nil {
		return nil, err
	}
	return after, nil
}

// ensureFree returns the user's live free subscription, creating one when the
// user has no live subscription at all. It returns nil when another live
// subscription (a pending upgrade) already exists.
func (s *Service) ensureFree(ctx context.Context, tx store.Repository, userID string, now time.Time) (*models.Subscription, error) {
	live, err := tx.FindLiveSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	if live != nil {
		if live.PlanID == types.PlanFree && live.Status.Entitled() {
			return live, nil
		}
		return nil, nil
	}
	free := s.newSubscription(userID, types.PlanFree, types.IntervalMonth, types.SubscriptionStatusActive, now, types.SourceAutoFree)
	free.CurrentPeriodStart = &now
	free.ActivatedAt = &now
	if err := tx.CreateSubscription(ctx, free); err != nil {
		return nil, err
	}
	if err := s.record(ctx, tx, types.SubscriptionActionAutoFree, "", nil, free, nil); err != nil {
		return nil, err
	}
	return free, nil
}

// CreateManual grants a plan directly: create pending, activate, then record
// the payment. The uniqueness rule is the same as RequestUpgrade.
func (s *Service) CreateManual(ctx context.Context, in CreateManualInput) (*ManualGrant, error) {
	if in.Interval == "" {
		in.Interval = types.IntervalMonth
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = types.PaymentMethodManual
	}
	if in.Currency == "" {
		in.Currency = s.defaultCurrency()
	}
	if in.UserID == "" {
		return nil, validationf("user id is required")
	}
	if err := s.validatePaidPlan(in.PlanID, in.Interval); err != nil {
		return nil, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, validationf("invalid payment method %q", in.PaymentMethod)
	}
	plan, _ := s.catalog.Lookup(in.PlanID)
	price := plan.Price(in.Interval)
	if in.Price != nil {
		price = *in.Price
	}
	if price.IsNegative() {
		return nil, validationf("price must not be negative")
	}

	now := s.now()
	grant := &ManualGrant{}
	err := s.inTx(ctx, "create_manual", func(tx store.Repository) error {
		if _, err := tx.GetUser(ctx, in.UserID); err != nil {
			return err
		}
		if err := s.neutralizeLiveFree(ctx, tx, in.UserID, in.ActivatedBy, now); err != nil {
			return err
		}
		sub := s.newSubscription(in.UserID, in.PlanID, in.Interval, types.SubscriptionStatusPending, now, types.SourceAdminManual)
		sub.RequestedAt = &now
		if in.Notes != "" {
			sub.Metadata[types.MetadataNotes] = in.Notes
		}
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			return err
		}
		if err := s.record(ctx, tx, types.SubscriptionActionManualGrant, in.ActivatedBy, nil, sub, nil); err != nil {
			return err
		}
		activated, err := s.activateInTx(ctx, tx, sub.ID, in.ActivatedBy, now)
		if err != nil {
			return err
		}
		rec := models.PaymentRecord{
			ID:          tool.GenerateUUIDV7(),
			Amount:      price,
			Currency:    in.Currency,
			Method:      in.PaymentMethod,
			Status:      types.PaymentStatusSucceeded,
			Description: fmt.Sprintf("Manual grant: %s (%s)", in.PlanID, in.Interval),
			ProcessedBy: in.ActivatedBy,
			ProcessedAt: now,
		}
		grant.Subscription, err = s.appendPayment(ctx, tx, activated, rec, in.ActivatedBy)
		grant.Payment = rec
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, in.UserID)
	logctx.FromCtx(ctx, s.log).Infow("subscription granted manually", "subscription_id", grant.Subscription.ID, "plan_id", in.PlanID, "user_id", in.UserID)
	return grant, nil
}

// RecordPayment appends one entry to the payment history. Earlier entries are never modified.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.PaymentRecord, error) {
	if in.Amount.IsNegative() {
		return nil, validationf("amount must not be negative")
	}
	if in.Method == "" {
		in.Method = types.PaymentMethodManual
	}
	if !in.Method.Valid() {
		return nil, validationf("invalid payment method %q", in.Method)
	}
	if in.Currency == "" {
		in.Currency = s.defaultCurrency()
	}
	now := s.now()
	rec := models.PaymentRecord{
		ID:          tool.GenerateUUIDV7(),
		Amount:      in.Amount,
		Currency:    in.Currency,
		Method:      in.Method,
		Status:      types.PaymentStatusSucceeded,
		Description: in.Description,
		ProcessedBy: in.ProcessedBy,
		ProcessedAt: now,
	}
	var userID string
	err := s.inTx(ctx, "record_payment", func(tx store.Repository) error {
		sub, err := tx.GetSubscription(ctx, in.SubscriptionID)
		if err != nil {
			return err
		}
		userID = sub.UserID
		_, err = s.appendPayment(ctx, tx, sub, rec, in.ProcessedBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, userID)
	return &rec, nil
}

func (s *Service) appendPayment(ctx context.Context, tx store.Repository, sub *models.Subscription, rec models.PaymentRecord, actor string) (*models.Subscription, error) {
	history := append(datatypes.JSONSlice[models.PaymentRecord]{}, sub.PaymentHistory...)
	history = append(history, rec)
	ok, err := tx.UpdateSubscription(ctx, sub.ID, store.Guard{Version: sub.Version}, map[string]any{
		"payment_history": history,
		"updated_at":      rec.ProcessedAt,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: subscription %s changed concurrently", ErrConflict, sub.ID)
	}
	after, err := tx.GetSubscription(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, tx, types.SubscriptionActionPayment, actor, sub, after, datatypes.JSONMap{"payment_id": rec.ID}); err != nil {
		return nil, err
	}
	return after, nil
}

// UpdateFields applies an admin edit. Setting Status to cancelled runs the
// regular cancel flow after the other fields are applied.
func (s *Service) UpdateFields(ctx context.Context, in UpdateFieldsInput) (*models.Subscription, error) {
	if in.PlanID != nil {
		if err := s.catalog.Validate(*in.PlanID); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, validationf("invalid status %q", *in.Status)
	}
	for resource, limit := range in.LimitOverrides {
		if limit < types.Unlimited {
			return nil, validationf("invalid limit %d for %s", limit, resource)
		}
	}

	now := s.now()
	var result *models.Subscription
	err := s.inTx(ctx, "update_fields", func(tx store.Repository) error {
		before, err := tx.GetSubscription(ctx, in.SubscriptionID)
		if err != nil {
			return err
		}
		cancelling := in.Status != nil && *in.Status == types.SubscriptionStatusCancelled
		if before.Status == types.SubscriptionStatusCancelled {
			if cancelling {
				return fmt.Errorf("%w: %s", ErrAlreadyCancelled, before.ID)
			}
			if in.Status != nil {
				return fmt.Errorf("%w: cancelled subscriptions cannot be reopened", ErrInvalidState)
			}
		}

		updates, entitlementsChanged, err := s.fieldUpdates(ctx, tx, before, in, now)
		if err != nil {
			return err
		}
		current := before
		if len(updates) > 0 {
			updates["updated_at"] = now
			ok, err := tx.UpdateSubscription(ctx, before.ID, store.Guard{Version: before.Version}, updates)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: subscription %s changed concurrently", ErrConflict, before.ID)
			}
			if current, err = tx.GetSubscription(ctx, before.ID); err != nil {
				return err
			}
			if err := s.record(ctx, tx, types.SubscriptionActionUpdate, in.UpdatedBy, before, current, nil); err != nil {
				return err
			}
		}

		if cancelling {
			result, _, err = s.cancelInTx(ctx, tx, current, in.UpdatedBy, now)
			return err
		}
		result = current
		if !entitlementsChanged {
			return nil
		}
		return s.refreshProjection(ctx, tx, current)
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, result.UserID)
	return result, nil
}

// fieldUpdates computes the column changes of an admin edit and whether the
// user's entitlements are affected.
func (s *Service) fieldUpdates(ctx context.Context, tx store.Repository, sub *models.Subscription, in UpdateFieldsInput, now time.Time) (map[string]any, bool, error) {
	updates := map[string]any{}
	changed := false
	metadata := datatypes.JSONMap(lo.Assign(map[string]any{}, map[string]any(sub.Metadata)))
	metadataChanged := false

	limits := sub.LimitMap()
	if in.PlanID != nil && *in.PlanID != sub.PlanID {
		updates["plan_id"] = *in.PlanID
		updates["features"] = datatypes.JSONSlice[string](s.catalog.FeaturesFor(*in.PlanID))
		limits = s.catalog.LimitsFor(*in.PlanID)
		updates["limits"] = datatypes.NewJSONType(limits)
		// overrides belonged to the old plan's snapshot
		if _, ok := metadata[types.MetadataLimitOverrides]; ok {
			delete(metadata, types.MetadataLimitOverrides)
			delete(metadata, types.MetadataLimitOverrideBy)
			metadataChanged = true
		}
		changed = true
	}
	if len(in.LimitOverrides) > 0 {
		merged := limits.Clone()
		overrides := map[string]any{}
		if prev, ok := metadata[types.MetadataLimitOverrides].(map[string]any); ok {
			overrides = lo.Assign(overrides, prev)
		}
		for resource, limit := range in.LimitOverrides {
			merged[resource] = limit
			overrides[resource] = limit
		}
		updates["limits"] = datatypes.NewJSONType(merged)
		metadata[types.MetadataLimitOverrides] = overrides
		metadata[types.MetadataLimitOverrideBy] = in.UpdatedBy
		metadataChanged = true
		changed = true
	}

	end := sub.CurrentPeriodEnd
	if in.CurrentPeriodEnd != nil {
		if sub.CurrentPeriodEnd != nil && in.CurrentPeriodEnd.Before(*sub.CurrentPeriodEnd) {
			return nil, false, validationf("current period end cannot move backwards")
		}
		end = in.CurrentPeriodEnd
		updates["current_period_end"] = *in.CurrentPeriodEnd
	}
	if in.Notes != nil {
		metadata[types.MetadataNotes] = *in.Notes
		metadataChanged = true
	}

	if in.Status != nil && *in.Status != sub.Status && *in.Status != types.SubscriptionStatusCancelled {
		next := *in.Status
		if next.Live() && !sub.Status.Live() {
			live, err := tx.FindLiveSubscription(ctx, sub.UserID)
			if err != nil {
				return nil, false, err
			}
			if live != nil {
				return nil, false, fmt.Errorf("%w: user %s already has live subscription %s", ErrConflict, sub.UserID, live.ID)
			}
		}
		updates["status"] = next
		if next.Entitled() && sub.CurrentPeriodStart == nil {
			updates["current_period_start"] = now
			updates["activated_at"] = now
			updates["activated_by"] = optional(in.UpdatedBy)
			if end == nil {
				updates["current_period_end"] = AddInterval(now, sub.Interval, 1)
			}
		}
		changed = true
	}

	if metadataChanged {
		updates["metadata"] = metadata
	}
	return updates, changed, nil
}
