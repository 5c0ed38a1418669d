package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

// Auth verifies the bearer token and injects the principal into both the echo
// context and the request context.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			p, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token").SetInternal(err)
			}

			c.Set("user_id", p.UserID)
			c.Set("email", p.Email)
			c.Set("role", p.Role)
			c.SetRequest(c.Request().WithContext(domain.ContextWithPrincipal(c.Request().Context(), p)))

			return next(c)
		}
	}
}
