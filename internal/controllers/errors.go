package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gilmarbasilio/ecoleta/internal/ibge"
	"github.com/gilmarbasilio/ecoleta/internal/services"
	"github.com/gilmarbasilio/ecoleta/internal/uploads"
)

const (
	msgPointNotFound = "Point not found."
	msgInternal      = "Internal server error."
)

// Message é o corpo de erro devolvido ao cliente: { "message": "..." }.
type Message struct {
	Message string `json:"message"`
}

// respondError traduz os erros de serviço para status HTTP. Erros
// inesperados vão para o HTTPErrorHandler, que loga e responde 500.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrPointNotFound):
		return c.JSON(http.StatusBadRequest, Message{Message: msgPointNotFound})
	case errors.Is(err, services.ErrNoItems),
		errors.Is(err, services.ErrUnknownItem),
		errors.Is(err, services.ErrInvalidPoint),
		errors.Is(err, uploads.ErrUnsupportedType),
		errors.Is(err, ibge.ErrInvalidUF):
		return c.JSON(http.StatusBadRequest, Message{Message: err.Error()})
	case errors.Is(err, uploads.ErrTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, Message{Message: err.Error()})
	case errors.Is(err, ibge.ErrUpstream):
		c.Logger().Warn(err)
		return c.JSON(http.StatusBadGateway, Message{Message: "Location service unavailable."})
	default:
		return err
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, Message{Message: msg})
}

// ErrorHandler substitui o handler padrão do Echo para manter o formato
// { "message" } em todas as respostas de erro.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := msgInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if status < http.StatusInternalServerError {
				msg = fmt.Sprint(he.Message)
			}
			if he.Internal != nil {
				e.Logger.Error(he.Internal)
			}
		} else {
			e.Logger.Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, Message{Message: msg})
		}
		if err != nil {
			e.Logger.Error(err)
		}
	}
}
