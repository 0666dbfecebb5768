package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gilmarbasilio/ecoleta/internal/catalog"
	"github.com/gilmarbasilio/ecoleta/internal/geoindex"
	"github.com/gilmarbasilio/ecoleta/internal/models"
	"github.com/gilmarbasilio/ecoleta/internal/observability/metrics"
)

const (
	DefaultNearbyRadiusKm = 10.0
	MaxNearbyRadiusKm     = 100.0
	DefaultNearbyLimit    = 50
)

// PointService define as operações de negócio sobre pontos de coleta.
type PointService interface {
	// ListPoints devolve, sem repetição, os pontos da cidade/UF que
	// aceitam ao menos um dos itens pedidos.
	ListPoints(ctx context.Context, filter models.PointFilter) ([]models.Point, error)
	// GetPoint devolve o ponto e os títulos dos itens que ele aceita,
	// ou ErrPointNotFound.
	GetPoint(ctx context.Context, id uint) (*models.PointDetail, error)
	// CreatePoint grava o ponto e seus itens numa única transação.
	// image é o nome do arquivo em uploads; vazio usa o placeholder.
	CreatePoint(ctx context.Context, req *models.CreatePointRequest, image string) (*models.Point, error)
	// NearbyPoints busca pontos num raio a partir de uma coordenada.
	NearbyPoints(ctx context.Context, q models.NearbyQuery) ([]models.NearbyPoint, error)
	// WarmIndex recarrega o índice geográfico a partir do banco.
	WarmIndex(ctx context.Context) (int, error)
}

// pointService é a implementação concreta de PointService.
type pointService struct {
	db      *gorm.DB
	catalog *catalog.Catalog
	index   *geoindex.Index
	baseURL string
}

// NewPointService injeta o *gorm.DB, o catálogo de itens e o índice
// geográfico. baseURL é usado para montar image_url.
func NewPointService(db *gorm.DB, cat *catalog.Catalog, idx *geoindex.Index, baseURL string) PointService {
	if idx == nil {
		idx = geoindex.New()
	}
	return &pointService{db: db, catalog: cat, index: idx, baseURL: baseURL}
}

func (s *pointService) ListPoints(ctx context.Context, filter models.PointFilter) (points []models.Point, err error) {
	start := time.Now()
	defer func() { metrics.ObservePointQuery("list", time.Since(start), err) }()

	ids := uniqueIDs(filter.Items)
	if len(ids) == 0 {
		return nil, ErrNoItems
	}

	// SELECT DISTINCT points.* FROM points
	// JOIN points_items ON points_items.point_id = points.id
	// WHERE points_items.item_id IN (...) AND city = ? AND uf = ?
	err = s.db.WithContext(ctx).
		Model(&models.Point{}).
		Distinct("points.*").
		Joins("JOIN points_items ON points_items.point_id = points.id").
		Where("points_items.item_id IN ?", ids).
		Where("points.city = ?", filter.City).
		Where("points.uf = ?", filter.UF).
		Order("points.id").
		Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	if points == nil {
		points = []models.Point{}
	}
	for i := range points {
		s.decorate(&points[i])
	}
	return points, nil
}

func (s *pointService) GetPoint(ctx context.Context, id uint) (detail *models.PointDetail, err error) {
	start := time.Now()
	defer func() {
		// "não encontrado" é resposta válida, não erro de consulta
		qerr := err
		if errors.Is(qerr, ErrPointNotFound) {
			qerr = nil
		}
		metrics.ObservePointQuery("show", time.Since(start), qerr)
	}()

	if id == 0 {
		return nil, ErrPointNotFound
	}

	var point models.Point
	if err := s.db.WithContext(ctx).First(&point, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPointNotFound
		}
		return nil, fmt.Errorf("get point %d: %w", id, err)
	}

	items := []models.ItemTitle{}
	err = s.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("items.title").
		Joins("JOIN points_items ON points_items.item_id = items.id").
		Where("points_items.point_id = ?", id).
		Order("items.id").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("get point %d items: %w", id, err)
	}

	s.decorate(&point)
	return &models.PointDetail{Point: point, Items: items}, nil
}

func (s *pointService) CreatePoint(ctx context.Context, req *models.CreatePointRequest, image string) (created *models.Point, err error) {
	start := time.Now()
	defer func() { metrics.ObservePointCreated(time.Since(start), err) }()

	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidPoint)
	}
	ids := uniqueIDs(req.Items)
	if len(ids) == 0 {
		return nil, ErrNoItems
	}
	if missing := s.catalog.Missing(ids); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownItem, missing)
	}
	if err := validatePoint(req); err != nil {
		return nil, err
	}
	if image == "" {
		image = PlaceholderImage
	}

	point := models.Point{
		Image:     image,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Whatsapp:  strings.TrimSpace(req.Whatsapp),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		City:      strings.TrimSpace(req.City),
		UF:        strings.ToUpper(strings.TrimSpace(req.UF)),
	}

	// 1. Inicia a transação: ponto e itens são gravados juntos ou nada é gravado.
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin create point: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	// 2. Insere o ponto; o id gerado volta em point.ID.
	if err := tx.Create(&point).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert point: %w", err)
	}

	// 3. Insere os vínculos em lote. Se falhar, o rollback desfaz o ponto.
	links := make([]models.PointItem, 0, len(ids))
	for _, itemID := range ids {
		links = append(links, models.PointItem{PointID: point.ID, ItemID: itemID})
	}
	if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert point items: %w", err)
	}

	// 4. Só confirma depois que os dois inserts deram certo.
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit point: %w", err)
	}

	if s.index.Insert(geoindex.Location{ID: point.ID, Lat: point.Latitude, Lon: point.Longitude}) {
		metrics.SetGeoIndexPoints(s.index.Count())
	}

	s.decorate(&point)
	return &point, nil
}

func (s *pointService) NearbyPoints(ctx context.Context, q models.NearbyQuery) (result []models.NearbyPoint, err error) {
	start := time.Now()
	defer func() { metrics.ObservePointQuery("nearby", time.Since(start), err) }()

	if q.Latitude < -90 || q.Latitude > 90 || q.Longitude < -180 || q.Longitude > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidPoint)
	}
	radius := q.RadiusKm
	if radius <= 0 {
		radius = DefaultNearbyRadiusKm
	}
	if radius > MaxNearbyRadiusKm {
		radius = MaxNearbyRadiusKm
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}
	itemIDs := uniqueIDs(q.Items)

	// com filtro de itens pede todos os candidatos e corta depois do join
	indexLimit := limit
	if len(itemIDs) > 0 {
		indexLimit = 0
	}
	hits := s.index.Nearby(q.Latitude, q.Longitude, radius, indexLimit)
	result = []models.NearbyPoint{}
	if len(hits) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}

	query := s.db.WithContext(ctx).Model(&models.Point{}).Where("points.id IN ?", ids)
	if len(itemIDs) > 0 {
		query = query.
			Distinct("points.*").
			Joins("JOIN points_items ON points_items.point_id = points.id").
			Where("points_items.item_id IN ?", itemIDs)
	}
	var points []models.Point
	if err := query.Find(&points).Error; err != nil {
		return nil, fmt.Errorf("nearby points: %w", err)
	}

	byID := make(map[uint]models.Point, len(points))
	for _, p := range points {
		byID[p.ID] = p
	}
	// mantém a ordem por distância do índice
	for _, h := range hits {
		p, ok := byID[h.ID]
		if !ok {
			continue
		}
		s.decorate(&p)
		result = append(result, models.NearbyPoint{Point: p, DistanceKm: h.DistanceKm})
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *pointService) WarmIndex(ctx context.Context) (int, error) {
	var points []models.Point
	if err := s.db.WithContext(ctx).Select("id", "latitude", "longitude").Find(&points).Error; err != nil {
		return 0, fmt.Errorf("load point locations: %w", err)
	}
	locs := make([]geoindex.Location, 0, len(points))
	for _, p := range points {
		locs = append(locs, geoindex.Location{ID: p.ID, Lat: p.Latitude, Lon: p.Longitude})
	}
	s.index.Rebuild(locs)
	n := s.index.Count()
	metrics.SetGeoIndexPoints(n)
	return n, nil
}

func (s *pointService) decorate(p *models.Point) {
	p.ImageURL = ImageURL(s.baseURL, p.Image)
}

func validatePoint(req *models.CreatePointRequest) error {
	var missing []string
	for field, value := range map[string]string{
		"name":     req.Name,
		"email":    req.Email,
		"whatsapp": req.Whatsapp,
		"city":     req.City,
		"uf":       req.UF,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", ErrInvalidPoint, strings.Join(missing, ", "))
	}
	if len(strings.TrimSpace(req.UF)) != 2 {
		return fmt.Errorf("%w: uf must have 2 letters", ErrInvalidPoint)
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidPoint)
	}
	return nil
}

// uniqueIDs remove zeros e repetidos, preservando a ordem.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
