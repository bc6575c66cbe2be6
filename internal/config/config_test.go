package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/water-tracker/internal/auth"
)

func mapLookup(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := fromLookup(mapLookup(nil))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 8085, cfg.Port)
	assert.Equal(t, ":8085", cfg.Addr())
	assert.Equal(t, "data/water_tracker.db", cfg.DBPath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, auth.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := fromLookup(mapLookup(map[string]string{
		"HOST":             "127.0.0.1",
		"PORT":             "9000",
		"DB_PATH":          "/var/lib/water/prod.db",
		"LOG_LEVEL":        "debug",
		"BCRYPT_COST":      "10",
		"SHUTDOWN_TIMEOUT": "5s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, "/var/lib/water/prod.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestFromLookup_Invalid(t *testing.T) {
	tests := map[string]string{
		"PORT":             "eighty",
		"LOG_LEVEL":        "loud",
		"BCRYPT_COST":      "99",
		"SHUTDOWN_TIMEOUT": "-1s",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := fromLookup(mapLookup(map[string]string{key: value}))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9100\nDB_PATH=from-file.db\n"), 0o600))
	t.Setenv("DB_PATH", "from-env.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "from-env.db", cfg.DBPath, "process environment wins over the file")
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
