package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config regroupe toute la configuration du serveur GlowUp
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Points    PointsConfig    `yaml:"points"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT"`
	BasePath        string        `yaml:"base_path" env:"GLOWUP_BASE_PATH"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"GLOWUP_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"GLOWUP_SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"GLOWUP_CORS_ORIGINS"`
}

// StoreConfig sélectionne le backend clé-valeur
type StoreConfig struct {
	Driver string         `yaml:"driver" env:"GLOWUP_STORE_DRIVER"` // memory, postgres, sqlite, redis
	Table  string         `yaml:"table" env:"GLOWUP_STORE_TABLE"`
	DB     DatabaseConfig `yaml:"postgres"`
	SQLite SQLiteConfig   `yaml:"sqlite"`
	Redis  RedisConfig    `yaml:"redis"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     string `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"GLOWUP_SQLITE_PATH"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// AuthConfig sélectionne le fournisseur d'identité
type AuthConfig struct {
	Provider           string        `yaml:"provider" env:"GLOWUP_AUTH_PROVIDER"` // local, supabase
	JWTSecret          string        `yaml:"jwt_secret" env:"GLOWUP_JWT_SECRET"`
	TokenTTL           time.Duration `yaml:"token_ttl" env:"GLOWUP_TOKEN_TTL"`
	SupabaseURL        string        `yaml:"supabase_url" env:"SUPABASE_URL"`
	SupabaseServiceKey string        `yaml:"supabase_service_key" env:"SUPABASE_SERVICE_ROLE_KEY"`
}

type PointsConfig struct {
	ConsistentUpdates bool `yaml:"consistent_updates" env:"GLOWUP_CONSISTENT_UPDATES"`
	MaxAttempts       int  `yaml:"max_attempts" env:"GLOWUP_POINTS_MAX_ATTEMPTS"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"GLOWUP_RATELIMIT_ENABLED"`
	RequestsPerSecond int  `yaml:"rps" env:"GLOWUP_RATELIMIT_RPS"`
	Burst             int  `yaml:"burst" env:"GLOWUP_RATELIMIT_BURST"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"GLOWUP_METRICS_ENABLED"`
}

type LogConfig struct {
	Debug   bool `yaml:"debug" env:"GLOWUP_DEBUG"`
	NoColor bool `yaml:"no_color" env:"NO_COLOR"`
}

// Default retourne la configuration par défaut (store mémoire, auth locale)
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Store: StoreConfig{
			Driver: "memory",
			Table:  "kv_store",
			DB: DatabaseConfig{
				Host:    "localhost",
				Port:    "5432",
				User:    "postgres",
				Name:    "glowup",
				SSLMode: "disable",
			},
			SQLite: SQLiteConfig{Path: "./data/glowup.db"},
			Redis:  RedisConfig{Addr: "localhost:6379"},
		},
		Auth: AuthConfig{
			Provider: "local",
			TokenTTL: 24 * time.Hour,
		},
		Points: PointsConfig{
			ConsistentUpdates: true,
			MaxAttempts:       5,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// LoadConfig charge la config: défauts, puis fichier YAML (GLOWUP_CONFIG), puis variables d'environnement
func LoadConfig() (*Config, error) {
	// Le .env est optionnel
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Load(os.Getenv("GLOWUP_CONFIG"))
}

// Load construit la config à partir d'un fichier YAML optionnel et de l'environnement
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	cfg.Server.BasePath = normalizeBasePath(cfg.Server.BasePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate vérifie la cohérence de la configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	switch c.Store.Driver {
	case "memory", "postgres", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Table == "" {
		return fmt.Errorf("store.table is required")
	}

	switch c.Auth.Provider {
	case "local":
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required for the local provider")
		}
		if c.Auth.TokenTTL <= 0 {
			return fmt.Errorf("auth.token_ttl must be positive")
		}
	case "supabase":
		if c.Auth.SupabaseURL == "" || c.Auth.SupabaseServiceKey == "" {
			return fmt.Errorf("auth.supabase_url and auth.supabase_service_key are required for the supabase provider")
		}
	default:
		return fmt.Errorf("unknown auth provider %q", c.Auth.Provider)
	}

	if c.Points.MaxAttempts < 1 {
		return fmt.Errorf("points.max_attempts must be at least 1")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("ratelimit.rps and ratelimit.burst must be positive")
	}
	return nil
}

// PostgresDSN construit l'URL de connexion Postgres
func (d DatabaseConfig) PostgresDSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.User, d.Password, d.Host, d.Port, d.Name)
	if d.SSLMode != "" {
		dsn += "?sslmode=" + d.SSLMode
	}
	return dsn
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimSuffix(p, "/")
}
