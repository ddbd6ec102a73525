package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdirTemp switches into a fresh temp dir for the duration of the test
func chdirTemp(t *testing.T) string {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	tempDir := t.TempDir()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})
	return tempDir
}

// TestDefaultConfig verifies that DefaultConfig returns sensible defaults
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		getValue func(*Config) string
		want     string
	}{
		{"timeout", func(c *Config) string { return c.Benchmark.Timeout.String() }, "3s"},
		{"user agent", func(c *Config) string { return c.Benchmark.UserAgent }, "cmirror/1.0"},
		{"catalog path", func(c *Config) string { return c.Catalog.Path }, ""},
		{"db path", func(c *Config) string { return c.History.DBPath }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.getValue(cfg)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if !cfg.History.Enabled {
		t.Errorf("History.Enabled = false, want true")
	}
	if cfg.Paths == nil {
		t.Errorf("Paths = nil, want non-nil map")
	}
}

// TestLoad tests loading a valid config file
func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "cmirror.yaml")

	configContent := `
benchmark:
  timeout: 1500ms
  user_agent: "probe/2.0"
catalog:
  path: "/srv/mirrors.yaml"
history:
  enabled: false
  db_path: "/var/lib/cmirror/history.db"
paths:
  pip: "/tmp/pip.conf"
  npm: ""
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Benchmark.Timeout != 1500*time.Millisecond {
		t.Errorf("Benchmark.Timeout = %v, want 1.5s", cfg.Benchmark.Timeout)
	}
	if cfg.Benchmark.UserAgent != "probe/2.0" {
		t.Errorf("Benchmark.UserAgent = %q, want %q", cfg.Benchmark.UserAgent, "probe/2.0")
	}
	if cfg.Catalog.Path != "/srv/mirrors.yaml" {
		t.Errorf("Catalog.Path = %q, want %q", cfg.Catalog.Path, "/srv/mirrors.yaml")
	}
	if cfg.History.Enabled {
		t.Errorf("History.Enabled = true, want false")
	}
	if got := cfg.HistoryDBPath(); got != "/var/lib/cmirror/history.db" {
		t.Errorf("HistoryDBPath() = %q, want %q", got, "/var/lib/cmirror/history.db")
	}

	paths := cfg.ToolPaths()
	if len(paths) != 1 || paths["pip"] != "/tmp/pip.conf" {
		t.Errorf("ToolPaths() = %v, want only pip", paths)
	}
}

// TestLoadPartialKeepsDefaults tests that omitted keys keep their defaults
func TestLoadPartialKeepsDefaults(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "cmirror.yaml")
	if err := os.WriteFile(configFile, []byte("catalog:\n  path: mirrors.json\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Benchmark.Timeout != 3*time.Second {
		t.Errorf("Benchmark.Timeout = %v, want 3s", cfg.Benchmark.Timeout)
	}
	if !cfg.History.Enabled {
		t.Errorf("History.Enabled = false, want true")
	}
	if cfg.Paths == nil {
		t.Errorf("Paths = nil, want non-nil map")
	}
}

// TestLoadInvalid tests that Load rejects bad content
func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unclosed bracket", "benchmark:\n  user_agent: [unclosed bracket\n"},
		{"bad duration", "benchmark:\n  timeout: soon\n"},
		{"negative duration", "benchmark:\n  timeout: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := filepath.Join(t.TempDir(), "cmirror.yaml")
			if err := os.WriteFile(configFile, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config file: %v", err)
			}

			_, err := Load(configFile)
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.HasPrefix(err.Error(), "parsing config file") {
				t.Errorf("error = %q, want parsing prefix", err)
			}
		})
	}
}

// TestLoadNonexistentFile tests that Load returns an error for missing files
func TestLoadNonexistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	if err == nil {
		t.Error("Load() succeeded, want error for nonexistent file")
	}
}

// TestFindConfigFileNotFound tests that FindConfigFile returns error when no config exists
func TestFindConfigFileNotFound(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HOME", t.TempDir())

	if _, err := os.Stat("/etc/cmirror/cmirror.yaml"); err == nil {
		t.Skip("system config present")
	}

	_, err := FindConfigFile()
	if err == nil {
		t.Error("FindConfigFile() succeeded, want error when no config exists")
	}
}

// TestFindConfigFileFound tests the search order
func TestFindConfigFileFound(t *testing.T) {
	tempDir := chdirTemp(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	userConfig := filepath.Join(home, ".config", "cmirror", "cmirror.yaml")
	if err := os.MkdirAll(filepath.Dir(userConfig), 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(userConfig, []byte("history:\n  enabled: false\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	found, err := FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile() failed: %v", err)
	}
	if found != userConfig {
		t.Errorf("FindConfigFile() = %q, want %q", found, userConfig)
	}

	// A file in the working directory wins
	if err := os.WriteFile(filepath.Join(tempDir, "cmirror.yaml"), []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	found, err = FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile() failed: %v", err)
	}
	if found != "cmirror.yaml" {
		t.Errorf("FindConfigFile() = %q, want cmirror.yaml", found)
	}
}

// TestHistoryDBPathDefault tests the default history location
func TestHistoryDBPathDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := DefaultConfig().HistoryDBPath()
	want := filepath.Join(home, ".local", "share", "cmirror", "history.db")
	if got != want {
		t.Errorf("HistoryDBPath() = %q, want %q", got, want)
	}
}
