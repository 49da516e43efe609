package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenFromHeader extracts the bearer token from an Authorization header.
// Returns "" when the header is missing or malformed.
func TokenFromHeader(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RequireSession returns middleware that resolves the bearer token into a
// Principal and stores it on the request context. Requests without a live
// session get a 401; the error body never says why the session was bad.
func RequireSession(mgr *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromHeader(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			p, err := mgr.Resolve(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}

			// Echo context values feed the logging and audit middleware.
			c.Set("login_id", p.LoginID)
			c.Set("superuser", p.Superuser)
			c.SetRequest(c.Request().WithContext(WithPrincipal(c.Request().Context(), *p)))

			return next(c)
		}
	}
}

// RequireSuperuser returns middleware that rejects non-superuser principals.
// It must run after RequireSession.
func RequireSuperuser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromEcho(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}
			if !p.Superuser {
				return echo.NewHTTPError(http.StatusForbidden, "superuser required")
			}
			return next(c)
		}
	}
}
