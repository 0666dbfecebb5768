// Package geoindex mantém uma R-Tree em memória com as coordenadas dos
// pontos de coleta, usada na busca por proximidade do app mobile.
package geoindex

import (
	"math"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
)

const (
	tolerance   = 0.0001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// Location é a posição de um ponto indexado.
type Location struct {
	ID  uint
	Lat float64
	Lon float64
}

// Hit é um resultado de busca com a distância até o centro, em km.
type Hit struct {
	ID         uint
	DistanceKm float64
}

type entry struct {
	loc  Location
	rect *rtreego.Rect
}

func (e *entry) Bounds() *rtreego.Rect {
	return e.rect
}

// Index é seguro para uso concorrente.
type Index struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
	ids  map[uint]struct{}
}

func New() *Index {
	return &Index{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
		ids:  make(map[uint]struct{}),
	}
}

// Rebuild descarta o conteúdo atual e indexa locs.
func (g *Index) Rebuild(locs []Location) {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	ids := make(map[uint]struct{}, len(locs))
	for _, loc := range locs {
		if _, seen := ids[loc.ID]; seen || !valid(loc) {
			continue
		}
		tree.Insert(newEntry(loc))
		ids[loc.ID] = struct{}{}
	}

	g.mu.Lock()
	g.tree = tree
	g.ids = ids
	g.mu.Unlock()
}

// Insert adiciona um ponto; ids já indexados e coordenadas inválidas são ignorados.
func (g *Index) Insert(loc Location) bool {
	if !valid(loc) {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, seen := g.ids[loc.ID]; seen {
		return false
	}
	g.tree.Insert(newEntry(loc))
	g.ids[loc.ID] = struct{}{}
	return true
}

func (g *Index) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.ids)
}

// Nearby devolve os pontos a até radiusKm de (lat, lon), do mais próximo ao
// mais distante. limit <= 0 não limita.
func (g *Index) Nearby(lat, lon, radiusKm float64, limit int) []Hit {
	if radiusKm <= 0 {
		return nil
	}

	// caixa envolvente em graus; a longitude encolhe com o cosseno da latitude
	dLat := (radiusKm / earthRadius) * (180 / math.Pi)
	dLon := 180.0
	if c := math.Cos(lat * math.Pi / 180); c > 1e-6 {
		dLon = math.Min(dLat/c, 180)
	}

	var candidates []rtreego.Spatial
	g.mu.RLock()
	for _, r := range lonRanges(lon, dLon) {
		bounds, err := rtreego.NewRect(rtreego.Point{lat - dLat, r[0]}, []float64{2 * dLat, r[1] - r[0]})
		if err != nil {
			continue
		}
		candidates = append(candidates, g.tree.SearchIntersect(bounds)...)
	}
	g.mu.RUnlock()

	seen := make(map[uint]struct{}, len(candidates))
	hits := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		e, ok := c.(*entry)
		if !ok {
			continue
		}
		if _, dup := seen[e.loc.ID]; dup {
			continue
		}
		seen[e.loc.ID] = struct{}{}
		d := Distance(lat, lon, e.loc.Lat, e.loc.Lon)
		if d <= radiusKm {
			hits = append(hits, Hit{ID: e.loc.ID, DistanceKm: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceKm == hits[j].DistanceKm {
			return hits[i].ID < hits[j].ID
		}
		return hits[i].DistanceKm < hits[j].DistanceKm
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// lonRanges devolve as faixas de longitude da caixa de busca. Quando a
// caixa passa de ±180 ela é dividida em duas, uma de cada lado do antimeridiano.
func lonRanges(lon, dLon float64) [][2]float64 {
	if dLon >= 180 {
		return [][2]float64{{-180, 180}}
	}
	lo, hi := lon-dLon, lon+dLon
	switch {
	case lo < -180:
		return [][2]float64{{-180, hi}, {lo + 360, 180}}
	case hi > 180:
		return [][2]float64{{lo, 180}, {-180, hi - 360}}
	}
	return [][2]float64{{lo, hi}}
}

// Distance calcula a distância de Haversine entre dois pontos, em km.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dLat := lat2Rad - lat1Rad
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func newEntry(loc Location) *entry {
	return &entry{loc: loc, rect: rtreego.Point{loc.Lat, loc.Lon}.ToRect(tolerance)}
}

func valid(loc Location) bool {
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lon >= -180 && loc.Lon <= 180 &&
		!math.IsNaN(loc.Lat) && !math.IsNaN(loc.Lon)
}
