package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
)

// ctxPrincipal returns the identity injected by the Auth middleware. Its
// absence means the route was mounted without the gate.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(c.Request().Context())
	if !ok || p.UserID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return p, nil
}
