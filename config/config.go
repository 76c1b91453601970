package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are loaded, when present, before the environment is parsed.
// Variables already set in the process environment win.
var DefaultEnvFiles = []string{".env", ".env.local"}

type DatabaseOptions struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"catalog"`
	Password        string        `env:"DB_PASSWORD" envDefault:"catalog"`
	Name            string        `env:"DB_NAME" envDefault:"catalog"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"50"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1m"`
}

func (d DatabaseOptions) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type HTTPOptions struct {
	Addr               string   `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsPath        string   `env:"METRICS_PATH" envDefault:"/metrics"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	PageSize           int      `env:"PAGE_SIZE" envDefault:"12"`
	MaxPageSize        int      `env:"MAX_PAGE_SIZE" envDefault:"100"`
	SearchLimit        int      `env:"SEARCH_LIMIT" envDefault:"10"`
}

type CacheOptions struct {
	// RedisURL empty disables the attribute cache.
	RedisURL     string        `env:"REDIS_URL"`
	AttributeTTL time.Duration `env:"ATTRIBUTE_CACHE_TTL" envDefault:"10m"`
}

type ImportOptions struct {
	ChunkSize   int    `env:"IMPORT_CHUNK_SIZE" envDefault:"100"`
	MappingFile string `env:"ATTRIBUTE_MAPPING_FILE"`
}

type Config struct {
	Database    DatabaseOptions
	HTTP        HTTPOptions
	Cache       CacheOptions
	Import      ImportOptions
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"catalog"`
}

// LoadEnv loads the env files among files that exist and returns how many
// were loaded.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads the configuration from the process environment after loading
// DefaultEnvFiles.
func Load() (*Config, error) {
	if _, err := LoadEnv(DefaultEnvFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var problems []string
	if c.Import.ChunkSize < 1 {
		problems = append(problems, "IMPORT_CHUNK_SIZE must be positive")
	}
	if c.HTTP.PageSize < 1 || c.HTTP.PageSize > c.HTTP.MaxPageSize {
		problems = append(problems, "PAGE_SIZE must be between 1 and MAX_PAGE_SIZE")
	}
	if c.HTTP.SearchLimit < 1 || c.HTTP.SearchLimit > c.HTTP.MaxPageSize {
		problems = append(problems, "SEARCH_LIMIT must be between 1 and MAX_PAGE_SIZE")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
