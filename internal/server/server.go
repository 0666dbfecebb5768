// Package server monta a instância Echo com middlewares e rotas.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gilmarbasilio/ecoleta/internal/controllers"
	"github.com/gilmarbasilio/ecoleta/internal/services"
	"github.com/gilmarbasilio/ecoleta/internal/uploads"
)

// Deps reúne o que o servidor HTTP precisa; Locator e Store são opcionais.
type Deps struct {
	Points  services.PointService
	Items   services.ItemService
	Locator controllers.Locator
	Store   *uploads.Store
	// Ping verifica o banco em /healthz.
	Ping func(ctx context.Context) error
}

type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	// BodyLimit segue o formato do middleware do Echo ("6M").
	BodyLimit string
	// AccessLog liga o middleware.Logger; desligado nos testes.
	AccessLog bool
}

func New(opts Options, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = controllers.ErrorHandler(e)
	e.Validator = controllers.NewRequestValidator()

	if opts.AccessLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(corsConfig(opts.AllowedOrigins)))
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}
	e.Use(controllers.Metrics())

	// imagens enviadas e ícones dos itens
	if deps.Store != nil {
		e.Static("/uploads", deps.Store.Dir())
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				c.Logger().Errorf("healthz: %v", err)
				return c.JSON(http.StatusServiceUnavailable, controllers.Message{Message: "database unavailable"})
			}
		}
		return c.String(http.StatusOK, "ok")
	})

	api := e.Group(opts.APIPrefix)
	controllers.NewItemController(deps.Items).Register(api)
	controllers.NewPointController(deps.Points, deps.Store).Register(api)
	if deps.Locator != nil {
		controllers.NewLocationController(deps.Locator).Register(api)
	}

	return e
}

func corsConfig(origins []string) middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
	}
	return cfg
}
