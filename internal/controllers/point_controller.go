package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gilmarbasilio/ecoleta/internal/models"
	"github.com/gilmarbasilio/ecoleta/internal/services"
	"github.com/gilmarbasilio/ecoleta/internal/uploads"
)

// PointController agrupa as rotas de pontos de coleta.
type PointController struct {
	// svc executa as consultas e a transação de cadastro.
	svc services.PointService
	// store grava a imagem opcional enviada no formulário; pode ser nil.
	store *uploads.Store
}

// NewPointController recebe o serviço de pontos e o armazenamento de
// imagens e devolve o controller pronto para registrar as rotas.
func NewPointController(svc services.PointService, store *uploads.Store) *PointController {
	return &PointController{svc: svc, store: store}
}

// Register associa as rotas de pontos ao grupo (prefixo API_PREFIX).
func (ctr *PointController) Register(g *echo.Group) {
	g.GET("/points", ctr.ListPoints)
	g.GET("/points/nearby", ctr.NearbyPoints)
	g.GET("/points/:id", ctr.GetPoint)
	g.POST("/points", ctr.CreatePoint)
}

// ListPoints trata GET /points?city=&uf=&items=.
// - city e uf casam exatamente;
// - items é repetido (items=1&items=2) ou separado por vírgula;
// - responde 200 com a lista, vazia quando nada casa.
func (ctr *PointController) ListPoints(c echo.Context) error {
	city := strings.TrimSpace(c.QueryParam("city"))
	uf := strings.ToUpper(strings.TrimSpace(c.QueryParam("uf")))
	if city == "" || uf == "" {
		return badRequest(c, "city and uf are required")
	}

	items, err := parseItemIDs(c.QueryParams()["items"])
	if err != nil {
		return badRequest(c, err.Error())
	}
	if len(items) == 0 {
		return badRequest(c, services.ErrNoItems.Error())
	}

	points, err := ctr.svc.ListPoints(c.Request().Context(), models.PointFilter{City: city, UF: uf, Items: items})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, points)
}

// GetPoint trata GET /points/:id. Ponto inexistente responde 400
// com { "message": "Point not found." }; ids numéricos que não cabem
// num id de ponto (0, overflow) também são inexistentes.
func (ctr *PointController) GetPoint(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return respondError(c, services.ErrPointNotFound)
		}
		return badRequest(c, "Invalid point id.")
	}
	if id == 0 || uint64(uint(id)) != id {
		return respondError(c, services.ErrPointNotFound)
	}

	detail, err := ctr.svc.GetPoint(c.Request().Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// CreatePoint trata POST /points, vindo como multipart (front-end, com
// imagem opcional no campo "image") ou como JSON.
func (ctr *PointController) CreatePoint(c echo.Context) error {
	// 1. Popula os campos escalares a partir do corpo.
	req := new(models.CreatePointRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c, "Invalid request body.")
	}

	// 2. No formulário, items chega como texto ("1,2,3" ou repetido).
	if len(req.Items) == 0 && !isJSON(c) {
		form, err := c.FormParams()
		if err != nil {
			return badRequest(c, "Invalid request body.")
		}
		items, err := parseItemIDs(form["items"])
		if err != nil {
			return badRequest(c, err.Error())
		}
		req.Items = items
	}

	// 3. Valida o formato antes de tocar em disco ou banco.
	if err := c.Validate(req); err != nil {
		return err
	}

	// 4. Grava a imagem, se veio.
	image, err := ctr.saveImage(c)
	if err != nil {
		return respondError(c, err)
	}

	// 5. Ponto + itens numa transação; em falha a imagem é descartada.
	point, err := ctr.svc.CreatePoint(c.Request().Context(), req, image)
	if err != nil {
		if image != "" && ctr.store != nil {
			if rerr := ctr.store.Remove(image); rerr != nil {
				c.Logger().Warnf("remover imagem órfã %s: %v", image, rerr)
			}
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, point)
}

// NearbyPoints trata GET /points/nearby?lat=&lng=&radius=&items=&limit=.
func (ctr *PointController) NearbyPoints(c echo.Context) error {
	lat, okLat, errLat := parseFloatParam(c.QueryParam("lat"))
	lng, okLng, errLng := parseFloatParam(c.QueryParam("lng"))
	if !okLat || !okLng || errLat != nil || errLng != nil {
		return badRequest(c, "lat and lng are required numbers")
	}
	radius, _, err := parseFloatParam(c.QueryParam("radius"))
	if err != nil || radius < 0 {
		return badRequest(c, "radius must be a positive number of kilometers")
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return badRequest(c, "limit must be a positive integer")
		}
	}
	items, err := parseItemIDs(c.QueryParams()["items"])
	if err != nil {
		return badRequest(c, err.Error())
	}

	points, err := ctr.svc.NearbyPoints(c.Request().Context(), models.NearbyQuery{
		Latitude:  lat,
		Longitude: lng,
		RadiusKm:  radius,
		Items:     items,
		Limit:     limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, points)
}

func (ctr *PointController) saveImage(c echo.Context) (string, error) {
	if ctr.store == nil {
		return "", nil
	}
	form := c.Request().MultipartForm
	if form == nil || len(form.File["image"]) == 0 {
		return "", nil
	}
	return ctr.store.Save(form.File["image"][0])
}

func isJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}
