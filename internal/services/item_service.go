package services

import (
	"context"

	"github.com/gilmarbasilio/ecoleta/internal/catalog"
	"github.com/gilmarbasilio/ecoleta/internal/models"
)

// ItemService expõe as categorias de coleta.
type ItemService interface {
	// ListItems devolve todos os itens com a URL pública do ícone.
	ListItems(ctx context.Context) ([]models.ItemView, error)
}

// itemService serve direto do catálogo carregado na inicialização;
// não consulta o banco por requisição.
type itemService struct {
	catalog *catalog.Catalog
	baseURL string
}

func NewItemService(cat *catalog.Catalog, baseURL string) ItemService {
	return &itemService{catalog: cat, baseURL: baseURL}
}

func (s *itemService) ListItems(ctx context.Context) ([]models.ItemView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := s.catalog.All()
	views := make([]models.ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, models.ItemView{
			ID:       it.ID,
			Title:    it.Title,
			ImageURL: ImageURL(s.baseURL, it.Image),
		})
	}
	return views, nil
}
