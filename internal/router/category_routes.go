package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

// RegisterCategory registers the category listing, lookup and creation.
func RegisterCategory(e *echo.Echo, d Deps) {
	h := handler.NewCategoryHandler(d.Categories, d.Offers)
	cache := middleware.NewRedisCache(d.Cache, d.Redis, d.Log)

	g := e.Group("/api/category", middleware.InvalidateCache(d.Cache, d.Redis, d.Log))
	g.GET("", h.List, cache)
	g.POST("", h.Create, middleware.Authorize(d.Auth), middleware.BindBody[validation.CategoryInput]())
	g.GET("/:categoryId", h.Get, middleware.ParseIDParams("categoryId"), cache)
}
