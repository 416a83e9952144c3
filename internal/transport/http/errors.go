package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/njprem/PlaceBook_BackEnd/internal/service"
	"github.com/njprem/PlaceBook_BackEnd/internal/util"
)

// errorStatus maps service sentinels to HTTP status codes. Storage failures and
// unknown errors are never described to the client.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrListingNotFound),
		errors.Is(err, service.ErrPlaceNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrDuplicateListing), errors.Is(err, service.ErrEmailAlreadyUsed):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrAvatarStorageDisabled):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(c echo.Context, logger *zap.Logger, err error) error {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		if logger == nil {
			logger = zap.NewNop()
		}
		logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
	}
	return c.JSON(status, util.Error(message))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, util.Error(message))
}

// httpErrorHandler renders echo's own errors (unknown route, body limit) in the
// response envelope.
func httpErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			message := http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok && m != "" {
				message = m
			}
			_ = c.JSON(he.Code, util.Error(message))
			return
		}
		_ = writeError(c, logger, err)
	}
}
