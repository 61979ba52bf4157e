package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/pkg/logctx"
	"github.com/fatflowers/financeplus/pkg/response"
)

// errorStatus maps service error kinds onto HTTP statuses and envelope codes.
func errorStatus(err error) (int, response.APIResponseCode) {
	switch {
	case errors.Is(err, subscription.ErrValidation):
		return http.StatusBadRequest, response.APIResponseCodeBadRequest
	case errors.Is(err, subscription.ErrNotFound):
		return http.StatusNotFound, response.APIResponseCodeNotFound
	case errors.Is(err, subscription.ErrConflict):
		return http.StatusConflict, response.APIResponseCodeConflict
	case errors.Is(err, subscription.ErrInvalidState), errors.Is(err, subscription.ErrAlreadyCancelled):
		return http.StatusConflict, response.APIResponseCodeInvalidState
	case errors.Is(err, subscription.ErrInfrastructure):
		return http.StatusServiceUnavailable, response.APIResponseCodeUnavailable
	default:
		return http.StatusInternalServerError, response.APIResponseCodeError
	}
}

// writeError renders err in the response envelope. Server-side failures are
// logged and their details hidden from the client.
func writeError(c *gin.Context, log *zap.SugaredLogger, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logctx.FromCtx(c.Request.Context(), logctx.FromGin(c, log)).Errorw("request failed", "path", c.FullPath(), "err", err)
		c.JSON(status, response.ErrorT[any](code, nil))
		return
	}
	c.JSON(status, response.ErrorT[any](code, err.Error()))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
}
