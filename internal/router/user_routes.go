package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

// RegisterUser registers registration and the token endpoints under
// /api/user.  Login and refresh are rate limited per client IP.
func RegisterUser(e *echo.Echo, d Deps) {
	h := handler.NewUserHandler(d.Users, d.Auth)
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)

	g := e.Group("/api/user")
	g.GET("", h.List)
	g.POST("", h.Register, middleware.BindBody[validation.RegisterInput]())
	g.POST("/login", h.Login, limit, middleware.BindBody[validation.LoginInput]())
	g.POST("/refresh", h.Refresh, limit, middleware.BindBody[validation.TokenInput]())
	// Logout checks the access token itself so a missing body token is a 400
	// before any auth failure.
	g.DELETE("/logout", h.Logout, middleware.BindBody[validation.TokenInput]())
}
