// Package handler contains the echo handlers of the agenda API.  Handlers
// bind and validate the request, resolve the viewer from the request
// context and delegate to the service; errors are rendered as
// {"error": ..., "code": ...}.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrii/agenda/internal/apperror"
	"github.com/vitrii/agenda/internal/validation"
)

// respondError renders err.  Errors that are not *apperror.AppError are
// logged and answered as 500 without leaking details.
func respondError(c echo.Context, log zerolog.Logger, err error) error {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal("request", err)
	}
	status := apperror.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("route", c.Path()).
			Msg("request failed")
		return c.JSON(status, apperror.New(apperror.CodeInternal, "internal error").Body())
	}
	return c.JSON(status, appErr.Body())
}

// bindAndValidate binds the JSON body into dst and runs the echo validator.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		return apperror.Validation("%s", err.Error())
	}
	return nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid %s", name)
	}
	return id, nil
}

// parseRange parses the dataInicio/dataFim pair of a request body.
func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := validation.ParseTimestamp(start)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("invalid dataInicio")
	}
	e, err := validation.ParseTimestamp(end)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("invalid dataFim")
	}
	return s, e, nil
}
