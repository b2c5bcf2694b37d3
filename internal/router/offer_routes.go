package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

// RegisterOffer registers offers, their comments and title search.
// Middleware order matters: auth, then path params, then existence, then
// ownership, then the body.  Ownership always runs before a delete.  The
// cache sits in front of the existence check so a hit skips the store.
func RegisterOffer(e *echo.Echo, d Deps) {
	offers := handler.NewOfferHandler(d.Offers)
	comments := handler.NewCommentHandler(d.Comments)

	auth := middleware.Authorize(d.Auth)
	cache := middleware.NewRedisCache(d.Cache, d.Redis, d.Log)
	offerID := middleware.ParseIDParams("offerId")
	offerExists := middleware.OfferExists(d.Offers)

	g := e.Group("/api/offer", middleware.InvalidateCache(d.Cache, d.Redis, d.Log))
	g.GET("", offers.List, cache)
	g.POST("", offers.Create, auth, middleware.BindBody[validation.OfferInput]())
	g.GET("/:offerId", offers.Get, cache, offerID, offerExists)
	g.PUT("/:offerId", offers.Update,
		auth, offerID, offerExists, middleware.OfferOwner(), middleware.BindBody[validation.OfferInput]())
	g.DELETE("/:offerId", offers.Delete, auth, offerID, offerExists, middleware.OfferOwner())

	g.GET("/:offerId/comments", comments.List, offerID, offerExists)
	g.POST("/:offerId/comments", comments.Create,
		auth, offerID, offerExists, middleware.BindBody[validation.CommentInput]())
	g.DELETE("/:offerId/comments/:commentId", comments.Delete,
		auth, middleware.ParseIDParams("offerId", "commentId"), offerExists,
		middleware.CommentExists(d.Comments), middleware.CommentOwner())

	e.GET("/api/search", offers.Search)
}
