package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/service"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

// respond maps service errors to status codes.  Anything unrecognized is a
// 500 with a generic message; the cause was already logged by the service.
func respond(c echo.Context, err error) error {
	var ve *validation.Error
	switch {
	case errors.As(err, &ve):
		return middleware.JSONError(c, http.StatusBadRequest, "validation failed", ve.Fields)
	case errors.Is(err, service.ErrEmailExists):
		return middleware.JSONError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrUnauthorized):
		return middleware.JSONError(c, http.StatusForbidden, "incorrect email or password", nil)
	case errors.Is(err, service.ErrForbidden):
		return middleware.JSONError(c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, service.ErrNotFound):
		return middleware.JSONError(c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, service.ErrConflict):
		return middleware.JSONError(c, http.StatusConflict, err.Error(), nil)
	}
	return middleware.JSONError(c, http.StatusInternalServerError, "internal error", nil)
}

// ErrorHandler renders errors returned up the chain (unknown routes, bad
// methods, panics caught by Recover) with the same body as respond.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := http.StatusInternalServerError, "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = middleware.JSONError(c, code, msg, nil)
}
