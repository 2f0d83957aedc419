package middleware // package middleware contains reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/appsalon/booking-api/internal/model"
	"github.com/appsalon/booking-api/internal/repository"
	"github.com/appsalon/booking-api/internal/utils"
)

// userKey is the context key under which the resolved caller is stored.
const userKey = "user"

// Auth returns an Echo middleware that validates a Bearer access token
// and resolves it to a full user record from the store. The record is
// attached to the request context; its sensitive fields never reach the
// client because the model strips them from JSON. Handlers read the
// caller back via CurrentUser.
func Auth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido o inexistente"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			uid, err := utils.ParseUserToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, uid)
			if err != nil {
				// A valid signature for a deleted user is still unauthorized.
				return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "Token no válido"})
			}

			c.Set(userKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated caller attached by Auth. The
// second result is false when the middleware did not run on this route.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userKey).(model.User)
	return u, ok
}
