package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gilmarbasilio/ecoleta/internal/catalog"
	"github.com/gilmarbasilio/ecoleta/internal/config"
	"github.com/gilmarbasilio/ecoleta/internal/database"
	"github.com/gilmarbasilio/ecoleta/internal/geoindex"
	"github.com/gilmarbasilio/ecoleta/internal/ibge"
	"github.com/gilmarbasilio/ecoleta/internal/observability/metrics"
	"github.com/gilmarbasilio/ecoleta/internal/server"
	"github.com/gilmarbasilio/ecoleta/internal/services"
	"github.com/gilmarbasilio/ecoleta/internal/uploads"
)

func main() {
	// 1. Carregar as configs
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Falha ao carregar configs: %v", err)
	}

	// 2. Conectar ao banco
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Falha ao conectar banco de dados: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Falha ao obter pool do banco: %v", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Erro ao fechar conexão: %v", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// 3. Catálogo de itens: carregado uma vez e gravado no banco
	cat, err := catalog.Load(cfg.ItemsFile)
	if err != nil {
		log.Fatalf("Falha ao carregar catálogo de itens: %v", err)
	}
	if err := cat.Seed(context.Background(), db); err != nil {
		log.Fatalf("Falha ao gravar catálogo de itens: %v", err)
	}

	metrics.Init(nil, sqlDB)

	// 4. Instancia serviços
	index := geoindex.New()
	pointSvc := services.NewPointService(db, cat, index, cfg.PublicBaseURL)
	itemSvc := services.NewItemService(cat, cfg.PublicBaseURL)

	n, err := pointSvc.WarmIndex(context.Background())
	if err != nil {
		log.Fatalf("Falha ao montar índice geográfico: %v", err)
	}
	log.Printf("índice geográfico com %d pontos", n)

	store, err := uploads.NewStore(cfg.UploadsDir, cfg.UploadMaxBytes)
	if err != nil {
		log.Fatalf("Falha ao preparar uploads: %v", err)
	}

	locator, err := ibge.NewClient(cfg.IBGEBaseURL, cfg.IBGETimeout)
	if err != nil {
		log.Fatalf("Falha ao criar cliente IBGE: %v", err)
	}

	// 5. Inicializa Echo e registra rotas
	e := server.New(server.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		// folga para os campos de texto além da imagem
		BodyLimit: strconv.FormatInt(cfg.UploadMaxBytes+(1<<20), 10),
		AccessLog: true,
	}, server.Deps{
		Points:  pointSvc,
		Items:   itemSvc,
		Locator: locator,
		Store:   store,
		Ping:    sqlDB.PingContext,
	})

	// 6. Roda servidor até SIGINT/SIGTERM
	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}
}
