package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config is loaded once at startup and never mutated afterwards.
type Config struct {
	Port      string `env:"PORT,      default=3000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	StaticDir string `env:"STATIC_DIR"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Audit AuditConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET, required"`
	TokenTTL     time.Duration `env:"TOKEN_TTL,     default=168h"`
	BcryptCost   int           `env:"BCRYPT_COST,   default=10"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=myapi"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR, default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,   default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL,  default=5m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadDotEnv copies variables from the given files (default ".env") into the
// process environment. Variables already set win, and missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
