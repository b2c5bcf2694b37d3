package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/validation"
)

const keyPayload = "payload"

// BindBody decodes the JSON body into T, validates it and stores it for
// Payload.  Malformed JSON, wrong field types and failed rules all yield
// 400.
func BindBody[T any]() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			in := new(T)
			if err := (&echo.DefaultBinder{}).BindBody(c, in); err != nil {
				return JSONError(c, http.StatusBadRequest, "invalid request body", nil)
			}
			if n, ok := any(in).(validation.Normalizer); ok {
				n.Normalize()
			}
			if err := validation.Validate(in); err != nil {
				var ve *validation.Error
				if errors.As(err, &ve) {
					return JSONError(c, http.StatusBadRequest, "validation failed", ve.Fields)
				}
				return JSONError(c, http.StatusBadRequest, "invalid request body", nil)
			}
			c.Set(keyPayload, in)
			return next(c)
		}
	}
}

// Payload returns the body stored by BindBody[T].
func Payload[T any](c echo.Context) *T {
	in, _ := c.Get(keyPayload).(*T)
	return in
}
