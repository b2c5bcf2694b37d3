package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const paramPrefix = "param:"

// ParseIDParams parses the named path parameters as positive integers and
// aborts with 400 when any of them is not.
func ParseIDParams(names ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, name := range names {
				id, err := strconv.ParseUint(c.Param(name), 10, 64)
				if err != nil || id == 0 {
					return JSONError(c, http.StatusBadRequest, "invalid path parameter",
						map[string]string{name: "must be a positive integer"})
				}
				c.Set(paramPrefix+name, id)
			}
			return next(c)
		}
	}
}

// IDParam returns a parameter parsed by ParseIDParams, or 0.
func IDParam(c echo.Context, name string) uint64 {
	id, _ := c.Get(paramPrefix + name).(uint64)
	return id
}
