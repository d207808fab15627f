/*
Package config loads runtime configuration from the environment.

PURPOSE:
  One Config struct for the server and the CLI. Values come from BOOKS_*
  environment variables, optionally seeded from a .env file.

VARIABLES:
  BOOKS_PORT              HTTP port (8080)
  BOOKS_STORE             memory | sqlite | bolt | redis (sqlite)
  BOOKS_DB_PATH           SQLite file (books.db)
  BOOKS_BOLT_PATH         bbolt file (books.bolt)
  BOOKS_REDIS_ADDR        redis address (localhost:6379)
  BOOKS_REDIS_PASSWORD    redis password
  BOOKS_REDIS_DB          redis database number (0)
  BOOKS_STOCK_POLICY      block | allow_negative (block)
  BOOKS_CHART_PATH        chart of accounts YAML/JSON (built-in chart)
  BOOKS_LOG_LEVEL         logrus level (info)
  BOOKS_LOG_FORMAT        json | text (json)
  BOOKS_GEMINI_API_KEY    default analyst key
  BOOKS_GEMINI_MODEL      analyst model (gemini-3-flash-preview)
  BOOKS_ANALYST_TIMEOUT   analyst request timeout (30s)
  BOOKS_BACKUP_DIR        enables periodic JSON backups when set
  BOOKS_BACKUP_INTERVAL   backup period (24h)
  BOOKS_DEFAULT_CURRENCY  display currency (USD)
  BOOKS_DEFAULT_LANGUAGE  display language (en)
  BOOKS_ALLOWED_ORIGINS   CORS origins, comma separated (*)

USAGE:
  cfg, err := config.Load()
  if err != nil {
      log.Fatal(err)
  }
  logger := config.NewLogger(cfg)
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/warp/books-engine/ledger"
	"github.com/warp/books-engine/locale"
)

// Prefix is prepended to every variable name.
const Prefix = "BOOKS"

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
)

type Config struct {
	Port  int    `envconfig:"PORT" default:"8080"`
	Store string `envconfig:"STORE" default:"sqlite"`

	DBPath        string `envconfig:"DB_PATH" default:"books.db"`
	BoltPath      string `envconfig:"BOLT_PATH" default:"books.bolt"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	StockPolicy string `envconfig:"STOCK_POLICY" default:"block"`
	ChartPath   string `envconfig:"CHART_PATH"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	GeminiAPIKey   string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel    string        `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`
	AnalystTimeout time.Duration `envconfig:"ANALYST_TIMEOUT" default:"30s"`

	BackupDir      string        `envconfig:"BACKUP_DIR"`
	BackupInterval time.Duration `envconfig:"BACKUP_INTERVAL" default:"24h"`

	DefaultCurrency string   `envconfig:"DEFAULT_CURRENCY" default:"USD"`
	DefaultLanguage string   `envconfig:"DEFAULT_LANGUAGE" default:"en"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// Load reads an optional .env file (the first of envFiles, else ./.env)
// and then the environment. Variables already set win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) > 0 && envFiles[0] != "" {
		if err := godotenv.Load(envFiles[0]); err != nil {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	var problems []string

	switch c.Store {
	case StoreMemory, StoreSQLite, StoreBolt, StoreRedis:
	default:
		problems = append(problems, fmt.Sprintf("BOOKS_STORE %q: want memory, sqlite, bolt or redis", c.Store))
	}
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("BOOKS_PORT %d out of range", c.Port))
	}
	if _, err := ledger.ParseStockPolicy(c.StockPolicy); err != nil {
		problems = append(problems, "BOOKS_STOCK_POLICY: "+err.Error())
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, "BOOKS_LOG_LEVEL: "+err.Error())
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		problems = append(problems, fmt.Sprintf("BOOKS_LOG_FORMAT %q: want json or text", c.LogFormat))
	}
	if _, err := locale.ParseCurrency(c.DefaultCurrency); err != nil {
		problems = append(problems, "BOOKS_DEFAULT_CURRENCY: "+err.Error())
	}
	if c.BackupDir != "" && c.BackupInterval <= 0 {
		problems = append(problems, "BOOKS_BACKUP_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
