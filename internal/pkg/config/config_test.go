package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cr3t",
	}))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "s3cr3t", cfg.Auth.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "myapi", cfg.Mongo.Database)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 4, cfg.Audit.Workers)
	assert.False(t, cfg.IsProduction())
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":    "s3cr3t",
		"PORT":          "8080",
		"ENV":           "production",
		"TOKEN_TTL":     "1h",
		"COOKIE_SECURE": "true",
		"MONGO_DB":      "auth",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "auth", cfg.Mongo.Database)
	assert.True(t, cfg.IsProduction())
}

func TestLoadWith_RequiresSecret(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("AUTHAPI_DOTENV_NEW=from-file\nAUTHAPI_DOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("AUTHAPI_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("AUTHAPI_DOTENV_NEW") })

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("AUTHAPI_DOTENV_NEW"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("AUTHAPI_DOTENV_SET"); got != "from-env" {
		t.Fatalf("existing variable overridden: %q", got)
	}
}
