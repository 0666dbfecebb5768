package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gilmarbasilio/ecoleta/internal/services"
)

// ItemController expõe as categorias de coleta.
type ItemController struct {
	svc services.ItemService
}

func NewItemController(svc services.ItemService) *ItemController {
	return &ItemController{svc: svc}
}

func (ctr *ItemController) Register(g *echo.Group) {
	// GET /items -> ListItems
	g.GET("/items", ctr.ListItems)
}

// ListItems responde 200 com [{ id, title, image_url }].
func (ctr *ItemController) ListItems(c echo.Context) error {
	items, err := ctr.svc.ListItems(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
