package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cpms/cpms-api/internal/api/metrics"
	"github.com/cpms/cpms-api/internal/api/response"
	"github.com/cpms/cpms-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the same envelope as successful responses with success=false.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, data := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = response.Fail(c, code, msg, data)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, any) {
	// Echo's own errors (unknown route, wrong method, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "Validation failed", ve.Fields
	}

	var re *domain.ResourceError
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password", nil
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized - missing or invalid token", nil
	case errors.Is(err, domain.ErrAccessDenied):
		resource := "unknown"
		msg := "Access denied"
		if errors.As(err, &re) {
			resource, msg = re.Resource, re.Message
		}
		metrics.AccessDeniedTotal.WithLabelValues(resource).Inc()
		return http.StatusForbidden, msg, nil
	case errors.Is(err, domain.ErrNotFound):
		if errors.As(err, &re) {
			return http.StatusNotFound, re.Message, nil
		}
		return http.StatusNotFound, "Resource not found", nil
	case errors.Is(err, domain.ErrAlreadyExists):
		if errors.As(err, &re) {
			return http.StatusConflict, re.Message, nil
		}
		return http.StatusConflict, "Resource already exists", nil
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error", nil
}
