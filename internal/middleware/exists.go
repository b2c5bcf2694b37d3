package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/service"
)

// Context keys for resources loaded by the existence checks.
const (
	KeyOffer   = "offer"
	KeyComment = "comment"
)

type OfferFinder interface {
	FindOne(ctx context.Context, id uint64) (*model.Offer, error)
}

type CommentFinder interface {
	FindOne(ctx context.Context, offerID, commentID uint64) (*model.Comment, error)
}

// OfferExists loads the offer named by :offerId (parsed by ParseIDParams)
// and aborts with 404 when it is missing.
func OfferExists(offers OfferFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IDParam(c, "offerId")
			o, err := offers.FindOne(c.Request().Context(), id)
			if err != nil {
				return lookupError(c, err, "offer not found")
			}
			c.Set(KeyOffer, o)
			return next(c)
		}
	}
}

// CommentExists loads :commentId scoped to :offerId and aborts with 404 when
// the comment is missing or belongs to another offer.
func CommentExists(comments CommentFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cm, err := comments.FindOne(c.Request().Context(), IDParam(c, "offerId"), IDParam(c, "commentId"))
			if err != nil {
				return lookupError(c, err, "comment not found")
			}
			c.Set(KeyComment, cm)
			return next(c)
		}
	}
}

func lookupError(c echo.Context, err error, notFound string) error {
	if errors.Is(err, service.ErrNotFound) {
		return JSONError(c, http.StatusNotFound, notFound, nil)
	}
	return JSONError(c, http.StatusInternalServerError, "internal error", nil)
}
