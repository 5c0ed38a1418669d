package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dealerhub/dealer-admin/internal/api/response"
	"github.com/dealerhub/dealer-admin/internal/core/domain"
)

// errorMappings is the single table from domain error kinds to HTTP.
var errorMappings = []struct {
	err     error
	status  int
	message string
}{
	{domain.ErrUserExists, http.StatusConflict, "User with this email already exists"},
	{domain.ErrDealerExists, http.StatusConflict, "Dealer with this email already exists"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domain.ErrDealerNotFound, http.StatusNotFound, "Dealer not found"},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, "Too many failed login attempts, try again later"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors through errorMappings.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders the standard envelope with success=false.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, response.Envelope) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, response.Fail("Validation failed", verr.Fields)
	}

	// Echo's own errors (bind failures, unknown routes, rate limiting).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, response.Fail(fmt.Sprintf("%v", he.Message), nil)
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, response.Fail(m.message, nil)
		}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, response.Fail("internal server error", nil)
}
