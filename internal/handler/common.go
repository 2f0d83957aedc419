package handler // handler defines http handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// validate checks request DTOs against their struct tags. A single
// instance caches the parsed tags.
var validate = validator.New()

// dbCtx bounds the duration of database work for one request.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// parseID parses a numeric path parameter. The zero value is rejected so
// "/services/0" counts as malformed rather than missing.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// wireDate is the date layout used on the HTTP surface (dd/MM/yyyy).
const wireDate = "02/01/2006"
