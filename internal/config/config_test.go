package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, DriverPostgres, cfg.Store.Driver)
	require.Equal(t, devJWTSecret, cfg.JWTSecret)
	require.Equal(t, 10*time.Second, cfg.SMTP.NotifyTimeout)
	require.Equal(t, 5, cfg.Limit.PerMinute)
	require.False(t, cfg.SMTP.Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/p.db")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("NOTIFY_TO", "owner@example.com")
	t.Setenv("NOTIFY_TIMEOUT", "3s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.Store.Driver)
	require.Equal(t, "/tmp/p.db", cfg.Store.SQLitePath)
	require.True(t, cfg.SMTP.Enabled())
	require.Equal(t, 3*time.Second, cfg.SMTP.NotifyTimeout)
	require.Equal(t, "redis://localhost:6379/0", cfg.Limit.RedisURL)
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FRONTEND_URL=https://morvin-quernel.com\n"), 0o600))
	t.Setenv("FRONTEND_URL", "")
	require.NoError(t, os.Unsetenv("FRONTEND_URL"))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://morvin-quernel.com", cfg.FrontendURL)
	require.NoError(t, os.Unsetenv("FRONTEND_URL"))
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mysql")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
