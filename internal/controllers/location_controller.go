package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gilmarbasilio/ecoleta/internal/ibge"
)

// Locator é a fonte de estados e municípios (IBGE em produção).
type Locator interface {
	States(ctx context.Context) ([]ibge.State, error)
	Cities(ctx context.Context, uf string) ([]ibge.City, error)
}

// LocationController repassa as consultas de localidades usadas nos
// selects UF -> cidade do cadastro.
type LocationController struct {
	locator Locator
}

func NewLocationController(locator Locator) *LocationController {
	return &LocationController{locator: locator}
}

func (ctr *LocationController) Register(g *echo.Group) {
	g.GET("/locations/ufs", ctr.ListStates)
	g.GET("/locations/ufs/:uf/cities", ctr.ListCities)
}

func (ctr *LocationController) ListStates(c echo.Context) error {
	states, err := ctr.locator.States(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, states)
}

func (ctr *LocationController) ListCities(c echo.Context) error {
	cities, err := ctr.locator.Cities(c.Request().Context(), c.Param("uf"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cities)
}
