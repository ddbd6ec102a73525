package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration
type Config struct {
	Benchmark BenchmarkConfig   `yaml:"benchmark"`
	Catalog   CatalogConfig     `yaml:"catalog"`
	History   HistoryConfig     `yaml:"history"`
	Paths     map[string]string `yaml:"paths"`
}

// BenchmarkConfig holds latency probe settings
type BenchmarkConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// CatalogConfig points at a user mirror catalog
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// HistoryConfig holds history store settings
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Benchmark: BenchmarkConfig{
			Timeout:   3 * time.Second,
			UserAgent: "cmirror/1.0",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Paths: make(map[string]string),
	}
}

// Load reads a config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.Paths == nil {
		cfg.Paths = make(map[string]string)
	}
	if cfg.Benchmark.Timeout < 0 {
		return nil, fmt.Errorf("parsing config file: benchmark.timeout must not be negative, got %s", cfg.Benchmark.Timeout)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() (string, error) {
	searchPaths := []string{
		"cmirror.yaml",
	}

	// User config takes precedence over the system-wide file
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths,
			filepath.Join(home, ".config", "cmirror", "cmirror.yaml"),
		)
	}
	searchPaths = append(searchPaths, "/etc/cmirror/cmirror.yaml")

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", searchPaths)
}

// HistoryDBPath returns the configured history database, defaulting to
// ~/.local/share/cmirror/history.db
func (c *Config) HistoryDBPath() string {
	if c.History.DBPath != "" {
		return c.History.DBPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "cmirror", "history.db")
	}
	return filepath.Join(home, ".local", "share", "cmirror", "history.db")
}

// ToolPaths returns the non-empty per-tool config path overrides
func (c *Config) ToolPaths() map[string]string {
	out := make(map[string]string, len(c.Paths))
	for tool, p := range c.Paths {
		if p != "" {
			out[tool] = p
		}
	}
	return out
}
