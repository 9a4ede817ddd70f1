package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.xml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default file written on first run")

	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join(dir, "data", "uploads"), cfg.Storage.UploadsDirectory)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxFileSize())
	assert.Equal(t, 5*time.Minute, cfg.BackendTimeout())
}

func TestLoadConfig_ReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.xml")

	custom := DefaultConfig()
	custom.Server.Port = 9000
	custom.Backend.BaseURL = "http://backend:8000"
	custom.Storage.DataDirectory = "/var/lib/learnable"
	require.NoError(t, custom.Save(path))

	t.Setenv("LEARNABLE_API_KEY", "from-env")
	t.Setenv("LOG_MODE", "dev")
	t.Setenv("PORT", "7000")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "http://backend:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "from-env", cfg.Backend.APIKey)
	assert.Equal(t, "dev", cfg.Advanced.LogMode)
	assert.Equal(t, "/var/lib/learnable", cfg.Storage.DataDirectory)
	assert.Equal(t, "127.0.0.1:7000", cfg.GetServerAddr())
}

func TestLoadConfig_DataDirOverride(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "elsewhere")
	t.Setenv("DATA_DIR", data)

	cfg, err := LoadConfig(filepath.Join(dir, "config.xml"))
	require.NoError(t, err)
	assert.Equal(t, data, cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join(data, "uploads"), cfg.Storage.UploadsDirectory)
	assert.Equal(t, filepath.Join(data, "settings.yaml"), cfg.Storage.SettingsFile)

	require.NoError(t, cfg.EnsureDirectories())
	_, err = os.Stat(cfg.Storage.UploadsDirectory)
	assert.NoError(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.xml")

	require.NoError(t, os.WriteFile(path, []byte("<LearnableCompanion><Server>"), 0644))
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config file")

	bad := DefaultConfig()
	bad.Upload.MaxFileSizeMB = 0
	require.NoError(t, bad.Save(path))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "max file size")
}
