package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/gilmarbasilio/ecoleta/internal/observability/metrics"
)

// Metrics conta as requisições por método, rota registrada e status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			metrics.IncHTTPRequest(c.Request().Method, c.Path(), strconv.Itoa(status))
			return err
		}
	}
}
