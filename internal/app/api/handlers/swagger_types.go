package handlers

import (
	"github.com/fatflowers/financeplus/internal/app/service/catalog"
	"github.com/fatflowers/financeplus/internal/app/service/statistics"
	subsvc "github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespPlans wraps the plan catalog in the standard envelope.
type RespPlans struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []catalog.Plan           `json:"data"`
}

type RespCurrentSubscription struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    CurrentSubscriptionResponse `json:"data"`
}

type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.Subscription      `json:"data"`
}

type RespSubscriptionList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.Subscription    `json:"data"`
}

type RespSubscriptionPage struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    subsvc.Page              `json:"data"`
}

// RespCancel carries the cancelled subscription and the free fallback, if one was created.
type RespCancel struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    subsvc.CancelResult      `json:"data"`
}

type RespManualGrant struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    subsvc.ManualGrant       `json:"data"`
}

type RespPayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.PaymentRecord     `json:"data"`
}

type RespEntitlements struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    EntitlementsResponse     `json:"data"`
}

type RespQuota struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    subsvc.Quota             `json:"data"`
}

// RespStats wraps the administrative statistics in the standard envelope.
type RespStats struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    statistics.SubscriptionStats `json:"data"`
}
