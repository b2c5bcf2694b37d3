package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/service"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

type CategoryHandler struct {
	Categories *service.CategoryService
	Offers     *service.OfferService
}

func NewCategoryHandler(c *service.CategoryService, o *service.OfferService) *CategoryHandler {
	return &CategoryHandler{Categories: c, Offers: o}
}

type categoryResp struct {
	*model.Category
	Offers []*model.Offer `json:"offers"`
}

// List returns categories with their offer counts.
func (h *CategoryHandler) List(c echo.Context) error {
	cats, err := h.Categories.FindAll(c.Request().Context())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, cats)
}

// Get returns one category with the offers filed under it.
func (h *CategoryHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := middleware.IDParam(c, "categoryId")
	cat, err := h.Categories.FindOne(ctx, id)
	if err != nil {
		return respond(c, err)
	}
	offers, err := h.Offers.FindByCategory(ctx, id)
	if err != nil {
		return respond(c, err)
	}
	cat.OffersCount = len(offers)
	return c.JSON(http.StatusOK, categoryResp{Category: cat, Offers: offers})
}

func (h *CategoryHandler) Create(c echo.Context) error {
	in := middleware.Payload[validation.CategoryInput](c)
	cat, err := h.Categories.Create(c.Request().Context(), in.Name)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}
