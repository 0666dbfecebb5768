package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"gorm.io/gorm"

	"github.com/gilmarbasilio/ecoleta/internal/geoindex"
	"github.com/gilmarbasilio/ecoleta/internal/models"
)

// TestCreatePoint_Success cadastra o "Mercado do João" e confere que foi
// gravado exatamente um ponto e um vínculo por item.
func TestCreatePoint_Success(t *testing.T) {
	db, cat := setupTestDB(t)
	idx := geoindex.New()
	svc := NewPointService(db, cat, idx, testBaseURL)

	req := newPointRequest("Mercado do João", "Rio do Sul", "SC", 1, 2)
	point, err := svc.CreatePoint(context.Background(), req, "")
	if err != nil {
		t.Fatalf("esperava sem erro ao criar ponto, obteve: %v", err)
	}
	if point.ID == 0 {
		t.Fatalf("esperava id gerado, obteve 0")
	}
	if point.Name != req.Name || point.City != "Rio do Sul" || point.UF != "SC" {
		t.Errorf("campos não batem: %+v", point)
	}
	if point.Image != PlaceholderImage || point.ImageURL != PlaceholderImage {
		t.Errorf("esperava placeholder, obteve image=%q image_url=%q", point.Image, point.ImageURL)
	}

	if n := countRows(t, db, &models.Point{}); n != 1 {
		t.Errorf("esperava 1 ponto, obteve %d", n)
	}
	var links []models.PointItem
	if err := db.Where("point_id = ?", point.ID).Order("item_id").Find(&links).Error; err != nil {
		t.Fatalf("falha ao buscar vínculos: %v", err)
	}
	if len(links) != 2 || links[0].ItemID != 1 || links[1].ItemID != 2 {
		t.Errorf("vínculos inesperados: %+v", links)
	}
	if idx.Count() != 1 {
		t.Errorf("esperava ponto no índice geográfico, count=%d", idx.Count())
	}
}

func TestCreatePoint_WithUploadedImage(t *testing.T) {
	db, cat := setupTestDB(t)
	svc := NewPointService(db, cat, nil, testBaseURL)

	point, err := svc.CreatePoint(context.Background(), newPointRequest("Eco Ponto", "Blumenau", "sc", 3), "abc123.png")
	if err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if point.Image != "abc123.png" {
		t.Errorf("image: got %q", point.Image)
	}
	if want := testBaseURL + "/uploads/abc123.png"; point.ImageURL != want {
		t.Errorf("image_url: got %q, want %q", point.ImageURL, want)
	}
	if point.UF != "SC" {
		t.Errorf("uf deveria ser normalizada para maiúsculas, obteve %q", point.UF)
	}
}

func TestCreatePoint_DuplicateItemsCollapsed(t *testing.T) {
	db, cat := setupTestDB(t)
	svc := NewPointService(db, cat, nil, testBaseURL)

	if _, err := svc.CreatePoint(context.Background(), newPointRequest("Eco", "Rio do Sul", "SC", 2, 2, 1), ""); err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if n := countRows(t, db, &models.PointItem{}); n != 2 {
		t.Errorf("esperava 2 vínculos, obteve %d", n)
	}
}

func TestCreatePoint_Validation(t *testing.T) {
	db, cat := setupTestDB(t)
	svc := NewPointService(db, cat, nil, testBaseURL)
	ctx := context.Background()

	noItems := newPointRequest("Eco", "Rio do Sul", "SC")
	if _, err := svc.CreatePoint(ctx, noItems, ""); !errors.Is(err, ErrNoItems) {
		t.Errorf("esperava ErrNoItems, obteve %v", err)
	}

	unknown := newPointRequest("Eco", "Rio do Sul", "SC", 1, 99)
	if _, err := svc.CreatePoint(ctx, unknown, ""); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("esperava ErrUnknownItem, obteve %v", err)
	}

	noName := newPointRequest(" ", "Rio do Sul", "SC", 1)
	if _, err := svc.CreatePoint(ctx, noName, ""); !errors.Is(err, ErrInvalidPoint) {
		t.Errorf("esperava ErrInvalidPoint, obteve %v", err)
	}

	badUF := newPointRequest("Eco", "Rio do Sul", "SCX", 1)
	if _, err := svc.CreatePoint(ctx, badUF, ""); !errors.Is(err, ErrInvalidPoint) {
		t.Errorf("esperava ErrInvalidPoint para uf, obteve %v", err)
	}

	if _, err := svc.CreatePoint(ctx, nil, ""); !errors.Is(err, ErrInvalidPoint) {
		t.Errorf("esperava ErrInvalidPoint para req nil, obteve %v", err)
	}

	if n := countRows(t, db, &models.Point{}); n != 0 {
		t.Errorf("nenhum ponto deveria ter sido gravado, obteve %d", n)
	}
}

// TestCreatePoint_RollbackWhenItemsFail força falha no insert de
// points_items e confere que o ponto também não fica gravado.
func TestCreatePoint_RollbackWhenItemsFail(t *testing.T) {
	db, cat := setupTestDB(t)
	idx := geoindex.New()
	svc := NewPointService(db, cat, idx, testBaseURL)

	boom := errors.New("falha simulada em points_items")
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_points_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "points_items" {
			_ = tx.AddError(boom)
		}
	})
	if err != nil {
		t.Fatalf("falha ao registrar callback: %v", err)
	}

	_, err = svc.CreatePoint(context.Background(), newPointRequest("Mercado do João", "Rio do Sul", "SC", 1, 2), "")
	if !errors.Is(err, boom) {
		t.Fatalf("esperava erro simulado, obteve: %v", err)
	}

	if n := countRows(t, db, &models.Point{}); n != 0 {
		t.Errorf("rollback deveria desfazer o ponto, obteve %d pontos", n)
	}
	if n := countRows(t, db, &models.PointItem{}); n != 0 {
		t.Errorf("esperava 0 vínculos, obteve %d", n)
	}
	if idx.Count() != 0 {
		t.Errorf("ponto não confirmado não pode ir para o índice")
	}
}

// TestGetPoint_Detail devolve o ponto e os títulos dos itens 1 e 2,
// e chamadas repetidas devolvem o mesmo resultado.
func TestGetPoint_Detail(t *testing.T) {
	db, cat := setupTestDB(t)
	svc := NewPointService(db, cat, nil, testBaseURL)
	ctx := context.Background()

	created, err := svc.CreatePoint(ctx, newPointRequest("Mercado do João", "Rio do Sul", "SC", 2, 1), "")
	if err != nil {
		t.Fatalf("falha ao criar ponto: %v", err)
	}

	detail, err := svc.GetPoint(ctx, created.ID)
	if err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if detail.Point.ID != created.ID || detail.Point.Name != "Mercado do João" {
		t.Errorf("ponto inesperado: %+v", detail.Point)
	}
	want := []models.ItemTitle{{Title: "Lâmpadas"}, {Title: "Pilhas e Baterias"}}
	if !reflect.DeepEqual(detail.Items, want) {
		t.Errorf("itens: got %+v, want %+v", detail.Items, want)
	}

	again, err := svc.GetPoint(ctx, created.ID)
	if err != nil {
		t.Fatalf("segunda leitura falhou: %v", err)
	}
	if !reflect.DeepEqual(detail, again) {
		t.Errorf("leituras repetidas divergem: %+v vs %+v", detail, again)
	}
}

func TestGetPoint_NotFound(t *testing.T) {
	db, cat := setupTestDB(t)
	svc := NewPointService(db, cat, nil, testBaseURL)

	for _, id := range []uint{404, 0} {
		detail, err := svc.GetPoint(context.Background(), id)
		if !errors.Is(err, ErrPointNotFound) {
			t.Fatalf("id %d: esperava ErrPointNotFound, obteve: %v", id, err)
		}
		if detail != nil {
			t.Errorf("id %d: não deveria devolver dados parciais: %+v", id, detail)
		}
	}
}

func TestListPoints_Empty(t *testing.T) {
	db, cat := setupTestDB(t)
	svc := NewPointService(db, cat, nil, testBaseURL)

	points, err := svc.ListPoints(context.Background(), models.PointFilter{City: "Rio do Sul", UF: "SC", Items: []uint{1}})
	if err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if points == nil || len(points) != 0 {
		t.Errorf("esperava lista vazia não nula, obteve: %#v", points)
	}
}

func TestListPoints_FiltersAndDeduplicates(t *testing.T) {
	db, cat := setupTestDB(t)
	svc := NewPointService(db, cat, nil, testBaseURL)
	ctx := context.Background()

	joao, err := svc.CreatePoint(ctx, newPointRequest("Mercado do João", "Rio do Sul", "SC", 1, 2), "")
	if err != nil {
		t.Fatalf("falha ao criar ponto: %v", err)
	}
	if _, err := svc.CreatePoint(ctx, newPointRequest("Outra Cidade", "Blumenau", "SC", 1, 2), ""); err != nil {
		t.Fatalf("falha ao criar ponto: %v", err)
	}
	if _, err := svc.CreatePoint(ctx, newPointRequest("Outro Estado", "Rio do Sul", "RS", 1), ""); err != nil {
		t.Fatalf("falha ao criar ponto: %v", err)
	}
	papel, err := svc.CreatePoint(ctx, newPointRequest("Só Papel", "Rio do Sul", "SC", 3), "")
	if err != nil {
		t.Fatalf("falha ao criar ponto: %v", err)
	}

	// João aceita 1 e 2: deve aparecer uma única vez
	points, err := svc.ListPoints(ctx, models.PointFilter{City: "Rio do Sul", UF: "SC", Items: []uint{1, 2}})
	if err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if len(points) != 1 || points[0].ID != joao.ID {
		t.Fatalf("esperava apenas o ponto %d, obteve: %+v", joao.ID, points)
	}
	if points[0].ImageURL == "" {
		t.Errorf("image_url deveria ser preenchido")
	}

	points, err = svc.ListPoints(ctx, models.PointFilter{City: "Rio do Sul", UF: "SC", Items: []uint{1}})
	if err != nil || len(points) != 1 || points[0].ID != joao.ID {
		t.Errorf("filtro por item 1: got %+v, err %v", points, err)
	}

	points, err = svc.ListPoints(ctx, models.PointFilter{City: "Rio do Sul", UF: "SC", Items: []uint{2, 3}})
	if err != nil || len(points) != 2 || points[0].ID != joao.ID || points[1].ID != papel.ID {
		t.Errorf("filtro por itens 2,3: got %+v, err %v", points, err)
	}

	points, err = svc.ListPoints(ctx, models.PointFilter{City: "rio do sul", UF: "SC", Items: []uint{1}})
	if err != nil || len(points) != 0 {
		t.Errorf("cidade deve casar exatamente: got %+v, err %v", points, err)
	}
}

func TestListPoints_NoItems(t *testing.T) {
	db, cat := setupTestDB(t)
	svc := NewPointService(db, cat, nil, testBaseURL)

	_, err := svc.ListPoints(context.Background(), models.PointFilter{City: "Rio do Sul", UF: "SC"})
	if !errors.Is(err, ErrNoItems) {
		t.Errorf("esperava ErrNoItems, obteve: %v", err)
	}
}

func TestNearbyPoints(t *testing.T) {
	db, cat := setupTestDB(t)
	svc := NewPointService(db, cat, geoindex.New(), testBaseURL)
	ctx := context.Background()

	near := newPointRequest("Centro", "Rio do Sul", "SC", 1)
	far := newPointRequest("Blumenau", "Blumenau", "SC", 2)
	far.Latitude, far.Longitude = -26.9194, -49.0661

	nearPoint, err := svc.CreatePoint(ctx, near, "")
	if err != nil {
		t.Fatalf("falha ao criar ponto: %v", err)
	}
	farPoint, err := svc.CreatePoint(ctx, far, "")
	if err != nil {
		t.Fatalf("falha ao criar ponto: %v", err)
	}

	got, err := svc.NearbyPoints(ctx, models.NearbyQuery{Latitude: -27.21, Longitude: -49.64, RadiusKm: 5})
	if err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if len(got) != 1 || got[0].ID != nearPoint.ID {
		t.Errorf("raio de 5 km: got %+v", got)
	}

	got, err = svc.NearbyPoints(ctx, models.NearbyQuery{Latitude: -27.21, Longitude: -49.64, RadiusKm: 100})
	if err != nil || len(got) != 2 || got[0].ID != nearPoint.ID || got[1].ID != farPoint.ID {
		t.Errorf("raio de 100 km: got %+v, err %v", got, err)
	}
	if len(got) == 2 && got[0].DistanceKm >= got[1].DistanceKm {
		t.Errorf("esperava ordem por distância: %+v", got)
	}

	got, err = svc.NearbyPoints(ctx, models.NearbyQuery{Latitude: -27.21, Longitude: -49.64, RadiusKm: 100, Items: []uint{2}})
	if err != nil || len(got) != 1 || got[0].ID != farPoint.ID {
		t.Errorf("filtro por item 2: got %+v, err %v", got, err)
	}

	if _, err := svc.NearbyPoints(ctx, models.NearbyQuery{Latitude: 120}); !errors.Is(err, ErrInvalidPoint) {
		t.Errorf("esperava ErrInvalidPoint, obteve %v", err)
	}
}

func TestWarmIndex(t *testing.T) {
	db, cat := setupTestDB(t)
	writer := NewPointService(db, cat, geoindex.New(), testBaseURL)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		if _, err := writer.CreatePoint(ctx, newPointRequest(name, "Rio do Sul", "SC", 1), ""); err != nil {
			t.Fatalf("falha ao criar ponto: %v", err)
		}
	}

	// um processo novo começa com o índice vazio
	idx := geoindex.New()
	reader := NewPointService(db, cat, idx, testBaseURL)
	n, err := reader.WarmIndex(ctx)
	if err != nil {
		t.Fatalf("esperava sem erro, obteve: %v", err)
	}
	if n != 3 || idx.Count() != 3 {
		t.Errorf("esperava 3 pontos no índice, obteve n=%d count=%d", n, idx.Count())
	}
}
