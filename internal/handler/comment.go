package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/service"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

// CommentHandler serves /api/offer/:offerId/comments.  Offer existence and
// comment ownership are enforced by middleware before these run.
type CommentHandler struct {
	Comments *service.CommentService
}

func NewCommentHandler(s *service.CommentService) *CommentHandler {
	return &CommentHandler{Comments: s}
}

func (h *CommentHandler) List(c echo.Context) error {
	comments, err := h.Comments.FindAll(c.Request().Context(), middleware.IDParam(c, "offerId"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Create(c echo.Context) error {
	uid, _ := middleware.UserID(c)
	in := middleware.Payload[validation.CommentInput](c)
	cm, err := h.Comments.Create(c.Request().Context(), middleware.IDParam(c, "offerId"), uid, in.Text)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusCreated, cm)
}

// Delete returns the removed comment.
func (h *CommentHandler) Delete(c echo.Context) error {
	cm, err := h.Comments.Delete(c.Request().Context(), middleware.IDParam(c, "commentId"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}
