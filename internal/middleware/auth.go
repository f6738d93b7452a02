package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vitrii/agenda/internal/apperror"
)

// RequireViewer rejects anonymous callers with 401.  It must run after
// Identity.
func RequireViewer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ViewerOf(c).Authenticated {
				return c.JSON(http.StatusUnauthorized, apperror.Unauthorized("authentication required").Body())
			}
			return next(c)
		}
	}
}
