package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin returns a middleware function that enforces that the
// authenticated user carries the admin flag in their token.  It assumes a
// previous middleware (JWTAuth) has extracted the flag into the context
// under ContextIsAdmin.  Non-admin callers receive 403 Forbidden.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			isAdmin, ok := c.Get(ContextIsAdmin).(bool)
			if !ok || !isAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Admin access required"})
			}
			return next(c)
		}
	}
}
