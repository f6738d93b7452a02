package middleware

// identity.go resolves who is calling.  The x-user-id header is the
// identity signal; when a JWT secret is configured a bearer token takes
// precedence.  The resulting session.Viewer is stored on the request
// context for handlers and services.

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vitrii/agenda/internal/apperror"
	"github.com/vitrii/agenda/internal/session"
)

// UserIDHeader carries the caller's user id.
const UserIDHeader = "X-User-Id"

// Identity returns a middleware that resolves the session.Viewer.  Missing
// identity yields an anonymous viewer; a malformed header or an invalid
// token answers 401.
func Identity(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			viewer, err := resolveViewer(c.Request(), jwtSecret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, apperror.Unauthorized(err.Error()).Body())
			}
			req := c.Request()
			c.SetRequest(req.WithContext(session.WithViewer(req.Context(), viewer)))
			return next(c)
		}
	}
}

func resolveViewer(r *http.Request, jwtSecret string) (session.Viewer, error) {
	if jwtSecret != "" {
		id, present, err := bearerUserID(r.Header.Get("Authorization"), jwtSecret)
		if present {
			if err != nil {
				return session.Viewer{}, err
			}
			return session.User(id), nil
		}
	}
	raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if raw == "" {
		return session.Anonymous(), nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return session.Viewer{}, errInvalidUserID
	}
	return session.User(id), nil
}

var errInvalidUserID = errors.New("invalid x-user-id header")

// ViewerOf returns the viewer resolved for this request.
func ViewerOf(c echo.Context) session.Viewer {
	return session.ViewerFrom(c.Request().Context())
}

// userKey is the identity part of cache and rate-limit keys.
func userKey(c echo.Context) string {
	v := ViewerOf(c)
	if !v.Authenticated {
		return "anon"
	}
	return strconv.FormatUint(v.UserID, 10)
}
