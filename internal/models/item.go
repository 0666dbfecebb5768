package models

// Item é uma categoria de material aceito pelos pontos de coleta
// (lâmpadas, pilhas e baterias, óleo de cozinha...). Dado de referência,
// carregado do catálogo na inicialização.
type Item struct {
	ID    uint   `gorm:"column:id;primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Title string `gorm:"column:title;not null" json:"title" yaml:"title"`
	Image string `gorm:"column:image;not null" json:"-" yaml:"image"`
}

func (Item) TableName() string {
	return "items"
}

// ItemView é o formato exposto em GET /items.
type ItemView struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}
