package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// KeyUserID is the context key holding the authenticated user id.
const KeyUserID = "user_id"

// Authorizer verifies an access token and returns the user id it was issued
// to.  Implemented by service.AuthService.
type Authorizer interface {
	Authorize(accessToken string) (uint64, error)
}

// ParseBearer splits an Authorization header of the form
// "Bearer <access> [<refresh>]".
func ParseBearer(header string) (access, refresh string, ok bool) {
	fields := strings.Fields(header)
	if len(fields) < 2 || len(fields) > 3 || !strings.EqualFold(fields[0], "Bearer") {
		return "", "", false
	}
	access = fields[1]
	if len(fields) == 3 {
		refresh = fields[2]
	}
	return access, refresh, true
}

// Authorize returns an Echo middleware that validates the Bearer access
// token and injects the user id (uint64) into the request context.  A
// trailing refresh token in the header is ignored.  Any failure, including a
// missing header, is answered with 403.
func Authorize(auth Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access, _, ok := ParseBearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return JSONError(c, http.StatusForbidden, "missing bearer token", nil)
			}
			id, err := auth.Authorize(access)
			if err != nil {
				return JSONError(c, http.StatusForbidden, "invalid access token", nil)
			}
			c.Set(KeyUserID, id)
			return next(c)
		}
	}
}

// JSONError writes the error body used across the API.
func JSONError(c echo.Context, code int, msg string, details map[string]string) error {
	body := echo.Map{"error": msg}
	if len(details) > 0 {
		body["details"] = details
	}
	return c.JSON(code, body)
}
