package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roadgeo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  url: sqlite:roads.db
ingest:
  chunk_size: 250
query:
  strategy: planar
  within_meters: 250
redis:
  ttl: 2m
`), 0o600))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("INGEST_CHUNK_SIZE", "")
	t.Setenv("NEAREST_STRATEGY", "INDEX")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite:roads.db", cfg.Database.URL)
	assert.Equal(t, 250, cfg.Ingest.ChunkSize)
	assert.Equal(t, config.StrategyIndex, cfg.Query.Strategy)
	assert.Equal(t, 250.0, cfg.Query.WithinMeters)
	assert.Equal(t, 2*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched defaults survive
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.NoError(t, cfg.Validate())
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 100, cfg.Ingest.ChunkSize)
	assert.Equal(t, config.StrategyAuto, cfg.Query.Strategy)
	assert.Equal(t, 100.0, cfg.Query.WithinMeters, "roadworks within 100 m")
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("INGEST_CHUNK_SIZE", "lots")
	_, err := config.Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, cfg.Validate(), "empty url")

	cfg.Database.URL = "postgres://localhost/roads"
	assert.NoError(t, cfg.Validate())

	cfg.Ingest.ChunkSize = 0
	assert.Error(t, cfg.Validate())

	cfg.Ingest.ChunkSize = 100
	cfg.Query.Strategy = "kd-tree"
	assert.Error(t, cfg.Validate())

	cfg.Query.Strategy = config.StrategyPlanar
	cfg.Query.WithinMeters = 0
	assert.Error(t, cfg.Validate())
}
