package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/service"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

// UserHandler bundles dependencies for the /api/user endpoints.
type UserHandler struct {
	Users *service.UserService
	Auth  *service.AuthService
}

func NewUserHandler(u *service.UserService, a *service.AuthService) *UserHandler {
	return &UserHandler{Users: u, Auth: a}
}

// List returns every user without password hashes.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.FindAll(c.Request().Context())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Register creates a user.  The response includes the id and the stored
// password hash.
func (h *UserHandler) Register(c echo.Context) error {
	in := middleware.Payload[validation.RegisterInput](c)
	u, err := h.Users.Register(c.Request().Context(), *in)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Login verifies credentials and returns a token pair.
func (h *UserHandler) Login(c echo.Context) error {
	in := middleware.Payload[validation.LoginInput](c)
	pair, err := h.Auth.Login(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh redeems the refresh token from the body for a new pair.
func (h *UserHandler) Refresh(c echo.Context) error {
	in := middleware.Payload[validation.TokenInput](c)
	pair, err := h.Auth.Refresh(c.Request().Context(), in.Token)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout revokes the refresh token from the body.  The access token in the
// Authorization header must be valid.
func (h *UserHandler) Logout(c echo.Context) error {
	in := middleware.Payload[validation.TokenInput](c)
	access, _, ok := middleware.ParseBearer(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return middleware.JSONError(c, http.StatusForbidden, "missing bearer token", nil)
	}
	if err := h.Auth.Logout(c.Request().Context(), access, in.Token); err != nil {
		return respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
