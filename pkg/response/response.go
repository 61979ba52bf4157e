package response

// Response envelope codes shared by every HTTP API.
type APIResponseCode int

const (
	APIResponseCodeOK           APIResponseCode = 0
	APIResponseCodeBadRequest   APIResponseCode = 40000
	APIResponseCodeUnauthorized APIResponseCode = 40100
	APIResponseCodeForbidden    APIResponseCode = 40300
	// Entitlement denials returned by the subscription middleware.
	APIResponseCodeSubscriptionRequired APIResponseCode = 40301
	APIResponseCodeSubscriptionInactive APIResponseCode = 40302
	APIResponseCodeFeatureNotAvailable  APIResponseCode = 40303
	APIResponseCodeUsageLimitExceeded   APIResponseCode = 40304
	APIResponseCodeNotFound             APIResponseCode = 40400
	APIResponseCodeConflict             APIResponseCode = 40900
	APIResponseCodeInvalidState         APIResponseCode = 40901
	APIResponseCodeError                APIResponseCode = 50000
	APIResponseCodeUnavailable          APIResponseCode = 50300
)

var codeToMsg = map[APIResponseCode]string{
	APIResponseCodeOK:                   "ok",
	APIResponseCodeBadRequest:           "bad request",
	APIResponseCodeUnauthorized:         "unauthorized",
	APIResponseCodeForbidden:            "forbidden",
	APIResponseCodeSubscriptionRequired: "SUBSCRIPTION_REQUIRED",
	APIResponseCodeSubscriptionInactive: "SUBSCRIPTION_INACTIVE",
	APIResponseCodeFeatureNotAvailable:  "FEATURE_NOT_AVAILABLE",
	APIResponseCodeUsageLimitExceeded:   "USAGE_LIMIT_EXCEEDED",
	APIResponseCodeNotFound:             "not found",
	APIResponseCodeConflict:             "conflict",
	APIResponseCodeInvalidState:         "invalid state",
	APIResponseCodeError:                "unexpected error",
	APIResponseCodeUnavailable:          "service unavailable",
}

// Message returns the canonical message of code.
func Message(code APIResponseCode) string {
	return codeToMsg[code]
}

// APIResponse is the generic response envelope used by HTTP APIs.
// Use OKT / ErrorT helpers to construct instances.
type APIResponse[T any] struct {
	Code    APIResponseCode `json:"code"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
}

// OKT returns a successful response with data.
func OKT[T any](data T) *APIResponse[T] {
	return &APIResponse[T]{Code: APIResponseCodeOK, Message: codeToMsg[APIResponseCodeOK], Data: data}
}

// ErrorT returns an error response with message and optional data.
func ErrorT[T any](code APIResponseCode, data T) *APIResponse[T] {
	return &APIResponse[T]{Code: code, Message: codeToMsg[code], Data: data}
}
