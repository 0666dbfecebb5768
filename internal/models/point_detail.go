package models

// ItemTitle é a projeção de Item usada no detalhe do ponto.
type ItemTitle struct {
	Title string `json:"title"`
}

// PointDetail é a resposta de GET /points/:id.
type PointDetail struct {
	Point Point       `json:"point"`
	Items []ItemTitle `json:"items"`
}

// NearbyPoint é um ponto acompanhado da distância até a origem da busca.
type NearbyPoint struct {
	Point
	DistanceKm float64 `json:"distance_km"`
}
