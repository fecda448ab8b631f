package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/sift/internal/chunk"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int64(chunk.DefaultBorder), cfg.Border)
	assert.Equal(t, int64(chunk.DefaultChunkSize), cfg.ChunkSize)
	assert.Greater(t, cfg.Workers, 0)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 200, cfg.Watch.DebounceMS)
}

// isolateUserConfig points XDG_CONFIG_HOME at an empty directory so a
// developer's real user config cannot leak into Load results.
func isolateUserConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadProjectFile(t *testing.T) {
	isolateUserConfig(t)
	dir := t.TempDir()
	content := `
border: 5
chunk_size: 4096
workers: 2
exclude:
  - "*.log"
skip_binary: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, int64(5), cfg.Border)
	assert.Equal(t, int64(4096), cfg.ChunkSize)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []string{"*.log"}, cfg.Exclude)
	assert.True(t, cfg.SkipBinary)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	isolateUserConfig(t)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int64(chunk.DefaultChunkSize), cfg.ChunkSize)
}

func TestLoadInvalidYAML(t *testing.T) {
	isolateUserConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte("border: [oops"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("SIFT_BORDER", "7")
	t.Setenv("SIFT_CHUNK_SIZE", "128")
	t.Setenv("SIFT_WORKERS", "3")
	t.Setenv("SIFT_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Border)
	assert.Equal(t, int64(128), cfg.ChunkSize)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvOverridesProjectFile(t *testing.T) {
	isolateUserConfig(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte("border: 5"), 0o644))
	t.Setenv("SIFT_BORDER", "9")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Border)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero border", mutate: func(c *Config) { c.Border = 0 }, wantErr: true},
		{name: "negative chunk size", mutate: func(c *Config) { c.ChunkSize = -1 }, wantErr: true},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -2 }, wantErr: true},
		{name: "zero workers means auto", mutate: func(c *Config) { c.Workers = 0 }, wantErr: false},
		{name: "zero watch cache", mutate: func(c *Config) { c.Watch.CacheSize = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
