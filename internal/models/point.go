package models

// Point representa um ponto de coleta físico.
type Point struct {
	ID        uint    `gorm:"column:id;primaryKey" json:"id"`
	Image     string  `gorm:"column:image;not null" json:"image"`
	Name      string  `gorm:"column:name;not null" json:"name"`
	Email     string  `gorm:"column:email;not null" json:"email"`
	Whatsapp  string  `gorm:"column:whatsapp;not null" json:"whatsapp"`
	Latitude  float64 `gorm:"column:latitude;not null" json:"latitude"`
	Longitude float64 `gorm:"column:longitude;not null" json:"longitude"`
	City      string  `gorm:"column:city;not null;index:idx_points_city_uf,priority:1" json:"city"`
	UF        string  `gorm:"column:uf;size:2;not null;index:idx_points_city_uf,priority:2" json:"uf"`

	// ImageURL não é persistido; é calculado na serialização.
	ImageURL string `gorm:"-" json:"image_url,omitempty"`
}

func (Point) TableName() string {
	return "points"
}
