package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin aborts the request with 403 unless the caller resolved by
// Auth carries the admin flag. It must be registered after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok || !u.Admin {
				return c.JSON(http.StatusForbidden, echo.Map{"msg": "Acción no válida"})
			}
			return next(c)
		}
	}
}
