package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = "9090"
	cfg.Database.Name = "bankfeed_test"
	cfg.Import.Format = "belfius-legacy"

	path := filepath.Join(t.TempDir(), "bankfeed.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", got.Server.Port)
	assert.Equal(t, "bankfeed_test", got.Database.Name)
	assert.Equal(t, "belfius-legacy", got.Import.Format)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "belfius", cfg.Import.Format)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "geheim")

	path := filepath.Join(t.TempDir(), "bankfeed.yaml")
	require.NoError(t, Save(path, &Config{}))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "geheim", cfg.Database.Password)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "bankfeed.yaml")
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "driver: postgres")
	assert.Contains(t, contents, "format: belfius")
	assert.Contains(t, contents, "port: \"8080\"")
}
