package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// OfferOwner aborts with 403 unless the caller authored the offer loaded by
// OfferExists.  It must run after Authorize and OfferExists.
func OfferOwner() echo.MiddlewareFunc {
	return requireOwner(func(c echo.Context) (uint64, bool) {
		o, ok := c.Get(KeyOffer).(*model.Offer)
		if !ok {
			return 0, false
		}
		return o.UserID, true
	})
}

// CommentOwner aborts with 403 unless the caller authored the comment loaded
// by CommentExists.
func CommentOwner() echo.MiddlewareFunc {
	return requireOwner(func(c echo.Context) (uint64, bool) {
		cm, ok := c.Get(KeyComment).(*model.Comment)
		if !ok {
			return 0, false
		}
		return cm.UserID, true
	})
}

func requireOwner(owner func(echo.Context) (uint64, bool)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := UserID(c)
			if !ok {
				return JSONError(c, http.StatusForbidden, "forbidden", nil)
			}
			author, ok := owner(c)
			if !ok || author != uid {
				return JSONError(c, http.StatusForbidden, "forbidden", nil)
			}
			return next(c)
		}
	}
}
