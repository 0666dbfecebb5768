package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gilmarbasilio/ecoleta/internal/catalog"
	"github.com/gilmarbasilio/ecoleta/internal/config"
	"github.com/gilmarbasilio/ecoleta/internal/database/migrations"

	_ "github.com/lib/pq"
)

var (
	dsn       string
	itemsFile string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Schema e dados iniciais do Ecoleta (PostgreSQL)",
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Aplica o schema SQL embutido",
	RunE:  runUp,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Grava o catálogo de itens na tabela items",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Postgres connection string (default: config do ambiente)")
	seedCmd.Flags().StringVar(&itemsFile, "items", "", "Arquivo YAML de itens (default: catálogo embutido)")

	rootCmd.AddCommand(upCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func open() (*sql.DB, error) {
	connStr := dsn
	if connStr == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if cfg.DBDriver != config.DriverPostgres {
			return nil, fmt.Errorf("migrate só suporta postgres (DB_DRIVER=%s)", cfg.DBDriver)
		}
		connStr = cfg.DSN()
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar ao banco: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("erro ao pingar o banco: %w", err)
	}
	return db, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	db, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Erro ao fechar conexão: %v", err)
		}
	}()

	sqlBytes, err := migrations.Files.ReadFile(migrations.Schema)
	if err != nil {
		return fmt.Errorf("erro ao ler arquivo SQL embutido: %w", err)
	}

	log.Printf("executando %s", migrations.Schema)
	if _, err := db.ExecContext(cmd.Context(), string(sqlBytes)); err != nil {
		return fmt.Errorf("erro ao executar migration: %w", err)
	}

	rows, err := db.QueryContext(cmd.Context(), `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN ('items', 'points', 'points_items')
		ORDER BY table_name
	`)
	if err != nil {
		return fmt.Errorf("erro ao verificar tabelas: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Erro ao fechar rows: %v", err)
		}
	}()

	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return err
		}
		log.Printf("  tabela %s ok", table)
	}
	return rows.Err()
}

func runSeed(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(itemsFile)
	if err != nil {
		return err
	}

	db, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Erro ao fechar conexão: %v", err)
		}
	}()

	tx, err := db.BeginTx(cmd.Context(), nil)
	if err != nil {
		return err
	}
	for _, item := range cat.All() {
		_, err := tx.ExecContext(cmd.Context(), `
			INSERT INTO items (id, title, image) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, image = EXCLUDED.image
		`, item.ID, item.Title, item.Image)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("erro ao gravar item %d: %w", item.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("%d itens gravados", len(cat.All()))
	return nil
}
