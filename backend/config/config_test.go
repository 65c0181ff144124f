package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "category", cfg.Challenges.Strategy)
	assert.Equal(t, 2, cfg.Challenges.PerCategory)
	assert.Equal(t, "0 6 * * *", cfg.Scheduler.GenerateSpec)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9000"
  timezone: Europe/Madrid
database:
  driver: sqlite
  path: ${UPDAILY_TEST_DB:updaily-test.db}
challenges:
  per_category: 3
scheduler:
  job_timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("UPDAILY_TEST_DB", "/tmp/expanded.db")
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "Europe/Madrid", cfg.Server.Timezone)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/expanded.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Challenges.PerCategory)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.JobTimeout)
	// Unset keys keep their defaults.
	assert.Equal(t, 5, cfg.Challenges.PoolSize)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Challenges.Strategy = "random"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Challenges.PerCategory = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Server.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := Defaults().Database
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=updaily sslmode=disable", d.DSN())
}
