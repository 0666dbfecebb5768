package models

// CreatePointRequest é o corpo de POST /points, vindo do formulário
// multipart do front-end ou de um JSON.
// Items não é lido pelo binder de formulário: o front envia "1,2,3".
type CreatePointRequest struct {
	Name      string  `json:"name" form:"name" validate:"required,max=255"`
	Email     string  `json:"email" form:"email" validate:"required,email"`
	Whatsapp  string  `json:"whatsapp" form:"whatsapp" validate:"required,max=32"`
	Latitude  float64 `json:"latitude" form:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" form:"longitude" validate:"longitude"`
	City      string  `json:"city" form:"city" validate:"required,max=255"`
	UF        string  `json:"uf" form:"uf" validate:"required,len=2,alpha"`
	Items     []uint  `json:"items" form:"-" query:"-" validate:"required,min=1,dive,gt=0"`
}

// PointFilter são os filtros de GET /points.
type PointFilter struct {
	City  string
	UF    string
	Items []uint
}

// NearbyQuery são os parâmetros de GET /points/nearby.
type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Items     []uint
	Limit     int
}
