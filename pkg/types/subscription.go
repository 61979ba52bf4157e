package types

import "github.com/samber/lo"

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusTrialing  SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"
)

var SubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusPending,
	SubscriptionStatusActive,
	SubscriptionStatusTrialing,
	SubscriptionStatusPastDue,
	SubscriptionStatusCancelled,
	SubscriptionStatusInactive,
}

// LiveSubscriptionStatuses are the statuses of which a user may hold at most one record.
var LiveSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusPending,
	SubscriptionStatusActive,
	SubscriptionStatusTrialing,
}

// EntitledSubscriptionStatuses grant access as long as the period has not ended.
var EntitledSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusTrialing,
}

func (s SubscriptionStatus) Valid() bool {
	return lo.Contains(SubscriptionStatuses, s)
}

func (s SubscriptionStatus) Live() bool {
	return lo.Contains(LiveSubscriptionStatuses, s)
}

func (s SubscriptionStatus) Entitled() bool {
	return lo.Contains(EntitledSubscriptionStatuses, s)
}

type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

func (i Interval) Valid() bool {
	return i == IntervalMonth || i == IntervalYear
}

// ExtendUnit is the unit of an extension. ExtendUnitInterval means the subscription's own interval.
type ExtendUnit string

const (
	ExtendUnitDays     ExtendUnit = "days"
	ExtendUnitInterval ExtendUnit = "interval"
)

// ParseExtendUnit accepts "days"/"day", "interval" and the subscription's own interval name.
func ParseExtendUnit(s string, own Interval) (ExtendUnit, bool) {
	switch {
	case s == "days" || s == "day":
		return ExtendUnitDays, true
	case s == string(ExtendUnitInterval) || (s != "" && Interval(s) == own):
		return ExtendUnitInterval, true
	}
	return "", false
}

// SubscriptionAction is the reason recorded with every subscription log row.
type SubscriptionAction string

const (
	SubscriptionActionRequest     SubscriptionAction = "request_upgrade"
	SubscriptionActionActivate    SubscriptionAction = "activate"
	SubscriptionActionExtend      SubscriptionAction = "extend"
	SubscriptionActionCancel      SubscriptionAction = "cancel"
	SubscriptionActionNeutralize  SubscriptionAction = "neutralize"
	SubscriptionActionAutoFree    SubscriptionAction = "auto_free"
	SubscriptionActionManualGrant SubscriptionAction = "manual_grant"
	SubscriptionActionPayment     SubscriptionAction = "payment"
	SubscriptionActionUpdate      SubscriptionAction = "update"
)

// Metadata keys written by the lifecycle operations.
const (
	MetadataSource          = "source"
	MetadataNote            = "note"
	MetadataNotes           = "notes"
	MetadataLimitOverrides  = "limit_overrides"
	MetadataLimitOverrideBy = "limit_overrides_by"

	SourceUserRequest = "user_request"
	SourceAdminManual = "admin_manual"
	SourceAutoFree    = "auto_free"
)
