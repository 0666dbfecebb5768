// Package catalog carrega as categorias de coleta (items) a partir de um
// documento YAML. O catálogo é somente leitura depois de carregado.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gilmarbasilio/ecoleta/internal/models"
)

//go:embed items.yaml
var defaultItems []byte

var ErrInvalidCatalog = errors.New("catálogo de itens inválido")

type document struct {
	Items []models.Item `yaml:"items"`
}

// Catalog guarda os itens indexados por id.
type Catalog struct {
	items []models.Item
	byID  map[uint]models.Item
}

// Load lê o catálogo de path; path vazio usa o catálogo embutido.
func Load(path string) (*Catalog, error) {
	raw := defaultItems
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ler catálogo %s: %w", path, err)
		}
		raw = b
	}
	return Parse(raw)
}

// Parse decodifica e valida um documento de catálogo.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("%w: nenhum item", ErrInvalidCatalog)
	}

	byID := make(map[uint]models.Item, len(doc.Items))
	for _, it := range doc.Items {
		switch {
		case it.ID == 0:
			return nil, fmt.Errorf("%w: item %q sem id", ErrInvalidCatalog, it.Title)
		case it.Title == "":
			return nil, fmt.Errorf("%w: item %d sem título", ErrInvalidCatalog, it.ID)
		case it.Image == "":
			return nil, fmt.Errorf("%w: item %d sem imagem", ErrInvalidCatalog, it.ID)
		}
		if _, dup := byID[it.ID]; dup {
			return nil, fmt.Errorf("%w: id %d duplicado", ErrInvalidCatalog, it.ID)
		}
		byID[it.ID] = it
	}

	items := append([]models.Item(nil), doc.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return &Catalog{items: items, byID: byID}, nil
}

// All devolve uma cópia dos itens ordenados por id.
func (c *Catalog) All() []models.Item {
	return append([]models.Item(nil), c.items...)
}

func (c *Catalog) Get(id uint) (models.Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// Missing devolve os ids que não existem no catálogo, na ordem recebida.
func (c *Catalog) Missing(ids []uint) []uint {
	var missing []uint
	for _, id := range ids {
		if _, ok := c.byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Seed grava o catálogo na tabela items (upsert por id), para que as
// chaves estrangeiras de points_items resolvam.
func (c *Catalog) Seed(ctx context.Context, db *gorm.DB) error {
	items := c.All()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "image"}),
		}).
		Create(&items).Error
}
