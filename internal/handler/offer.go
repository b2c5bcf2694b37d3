package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/service"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

// OfferHandler serves /api/offer and /api/search.
type OfferHandler struct {
	Offers *service.OfferService
}

func NewOfferHandler(o *service.OfferService) *OfferHandler {
	return &OfferHandler{Offers: o}
}

func (h *OfferHandler) List(c echo.Context) error {
	offers, err := h.Offers.FindAll(c.Request().Context())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, offers)
}

// Get returns the offer loaded by middleware.OfferExists.
func (h *OfferHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, c.Get(middleware.KeyOffer).(*model.Offer))
}

func (h *OfferHandler) Create(c echo.Context) error {
	uid, _ := middleware.UserID(c)
	in := middleware.Payload[validation.OfferInput](c)
	o, err := h.Offers.Create(c.Request().Context(), uid, *in)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *OfferHandler) Update(c echo.Context) error {
	in := middleware.Payload[validation.OfferInput](c)
	o, err := h.Offers.Update(c.Request().Context(), middleware.IDParam(c, "offerId"), *in)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Delete removes the offer together with its comments and returns it.
func (h *OfferHandler) Delete(c echo.Context) error {
	o, err := h.Offers.Delete(c.Request().Context(), middleware.IDParam(c, "offerId"))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Search matches ?query= against offer titles.
func (h *OfferHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("query"))
	if q == "" {
		return middleware.JSONError(c, http.StatusBadRequest, "validation failed",
			map[string]string{"query": "is required"})
	}
	offers, err := h.Offers.Search(c.Request().Context(), q)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, offers)
}
