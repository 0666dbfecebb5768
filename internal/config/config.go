package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DBTimezone  string

	HTTPAddr      string
	APIPrefix     string
	PublicBaseURL string

	UploadsDir     string
	UploadMaxBytes int64
	ItemsFile      string

	CORSAllowedOrigins []string

	IBGEBaseURL string
	IBGETimeout time.Duration
}

func Load() (*Config, error) {
	// carrega .env em dev; em produção as variáveis já vêm do ambiente
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	uploadMax, err := getenvInt64Default("UPLOAD_MAX_BYTES", 5<<20)
	if err != nil {
		return nil, err
	}
	ibgeTimeout, err := getenvDuration("IBGE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBDriver:    strings.ToLower(getenvDefault("DB_DRIVER", DriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      getenvDefault("DB_PORT", "5432"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBSSLMode:   getenvDefault("DB_SSLMODE", "disable"),
		DBTimezone:  getenvDefault("DB_TIMEZONE", "America/Sao_Paulo"),

		HTTPAddr:      getenvDefault("HTTP_ADDR", ":3333"),
		APIPrefix:     strings.TrimRight(os.Getenv("API_PREFIX"), "/"),
		PublicBaseURL: strings.TrimRight(getenvDefault("PUBLIC_BASE_URL", "http://localhost:3333"), "/"),

		UploadsDir:     getenvDefault("UPLOADS_DIR", "uploads"),
		UploadMaxBytes: uploadMax,
		ItemsFile:      os.Getenv("ITEMS_FILE"),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		IBGEBaseURL: strings.TrimRight(getenvDefault("IBGE_BASE_URL", "https://servicodados.ibge.gov.br/api/v1/localidades"), "/"),
		IBGETimeout: ibgeTimeout,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Printf("[CONFIG] driver=%s addr=%s prefix=%q public=%s uploads=%s",
		cfg.DBDriver, cfg.HTTPAddr, cfg.APIPrefix, cfg.PublicBaseURL, cfg.UploadsDir)
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL:
		if c.DatabaseURL == "" && (c.DBHost == "" || c.DBPort == "" || c.DBUser == "" || c.DBName == "") {
			return fmt.Errorf("variáveis de ambiente de DB não configuradas (DATABASE_URL ou DB_HOST/DB_PORT/DB_USER/DB_NAME)")
		}
	case DriverSQLite:
		if c.DatabaseURL == "" && c.DBName == "" {
			return fmt.Errorf("DB_NAME (arquivo) ou DATABASE_URL obrigatório para sqlite")
		}
	default:
		return fmt.Errorf("DB_DRIVER inválido: %q", c.DBDriver)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES deve ser positivo")
	}
	return nil
}

// DSN monta a string de conexão do driver escolhido; DATABASE_URL tem precedência.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	switch c.DBDriver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case DriverSQLite:
		return c.DBName
	default:
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimezone,
		)
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt64Default(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s inválido (%q): esperado número inteiro de bytes", key, value)
	}
	return parsed, nil
}

// getenvDuration aceita o formato de time.ParseDuration ("5s", "1m30s").
func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s inválido (%q): esperado duração como 5s", key, value)
	}
	return parsed, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
