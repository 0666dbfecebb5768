package services

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gilmarbasilio/ecoleta/internal/catalog"
	"github.com/gilmarbasilio/ecoleta/internal/models"
)

const testBaseURL = "http://localhost:3333"

// setupTestDB abre um SQLite em memória, migra as três tabelas e grava o
// catálogo padrão de itens.
func setupTestDB(t *testing.T) (*gorm.DB, *catalog.Catalog) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("não foi possível abrir DB de teste: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("falha ao obter *sql.DB: %v", err)
	}
	// cada conexão nova em :memory: seria um banco vazio
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.Item{}, &models.Point{}, &models.PointItem{}); err != nil {
		t.Fatalf("falha na migração dos modelos: %v", err)
	}

	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("falha ao carregar catálogo: %v", err)
	}
	if err := cat.Seed(context.Background(), db); err != nil {
		t.Fatalf("falha ao gravar catálogo: %v", err)
	}
	return db, cat
}

func newPointRequest(name, city, uf string, items ...uint) *models.CreatePointRequest {
	return &models.CreatePointRequest{
		Name:      name,
		Email:     "a@b.com",
		Whatsapp:  "11999999999",
		Latitude:  -27.2142,
		Longitude: -49.6431,
		City:      city,
		UF:        uf,
		Items:     items,
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("falha ao contar %T: %v", model, err)
	}
	return n
}
