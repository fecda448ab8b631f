// Package config provides sift configuration with layered precedence:
// flags > environment variables > project .sift.yaml > user config > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/sift/internal/chunk"
	"github.com/Aman-CERP/sift/internal/errors"
)

// ProjectConfigName is the per-directory config file name.
const ProjectConfigName = ".sift.yaml"

// Config represents the complete sift configuration.
type Config struct {
	// Border is the number of context bytes shown before and after a match.
	Border int64 `yaml:"border"`

	// ChunkSize is the maximum search interval size per chunk in bytes.
	ChunkSize int64 `yaml:"chunk_size"`

	// Workers bounds the number of chunks processed concurrently.
	// 0 means runtime.NumCPU().
	Workers int `yaml:"workers"`

	// Exclude lists glob patterns to skip during discovery.
	Exclude []string `yaml:"exclude"`

	// SkipBinary skips files that look binary (NUL in the first bytes).
	SkipBinary bool `yaml:"skip_binary"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Watch configures watch mode.
	Watch WatchConfig `yaml:"watch"`
}

// WatchConfig configures watch-mode behavior.
type WatchConfig struct {
	// DebounceMS is the event coalescing window in milliseconds.
	DebounceMS int `yaml:"debounce_ms"`

	// CacheSize is the number of per-file result entries kept between
	// passes so unchanged files are not re-read.
	CacheSize int `yaml:"cache_size"`
}

// NewConfig returns a config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Border:    chunk.DefaultBorder,
		ChunkSize: chunk.DefaultChunkSize,
		Workers:   runtime.NumCPU(),
		LogLevel:  "info",
		Watch: WatchConfig{
			DebounceMS: 200,
			CacheSize:  4096,
		},
	}
}

// Load builds the effective configuration for a run rooted at dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	// User config first, project config over it, env on top.
	if err := cfg.loadFromFile(userConfigPath()); err != nil {
		return nil, err
	}
	if err := cfg.loadFromFile(filepath.Join(dir, ProjectConfigName)); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// userConfigPath returns the user-level config path, honoring XDG_CONFIG_HOME.
func userConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sift", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sift", "config.yaml")
}

// loadFromFile merges the YAML file at path into the config.
// A missing file is not an error.
func (c *Config) loadFromFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeConfigInvalid, err).WithDetail("path", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("parse %s: %v", path, err), err)
	}
	return nil
}

// applyEnvOverrides applies SIFT_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SIFT_BORDER"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Border = n
		}
	}
	if v := os.Getenv("SIFT_CHUNK_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ChunkSize = n
		}
	}
	if v := os.Getenv("SIFT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("SIFT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.Border <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("border must be positive, got %d", c.Border), nil)
	}
	if c.ChunkSize <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("chunk_size must be positive, got %d", c.ChunkSize), nil)
	}
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("workers must not be negative, got %d", c.Workers), nil)
	}
	if c.Watch.DebounceMS < 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMS), nil)
	}
	if c.Watch.CacheSize <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("watch.cache_size must be positive, got %d", c.Watch.CacheSize), nil)
	}
	return nil
}
