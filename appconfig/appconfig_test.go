package appconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HTTP.Timeout.Seconds() != 30 {
		t.Errorf("expected default timeout 30s, got %v", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.RetryMaxRetries != 3 {
		t.Errorf("expected default max retries 3, got %d", cfg.HTTP.RetryMaxRetries)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("LLMPIPE_CACHE_DIR", "")
	t.Setenv("LLMPIPE_CATALOG_PATH", "")
	t.Setenv("LLMPIPE_DEBUG", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.RetryMaxRetries != 3 {
		t.Errorf("expected defaults to be used, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("LLMPIPE_CACHE_DIR", "")
	t.Setenv("LLMPIPE_CATALOG_PATH", "")
	t.Setenv("LLMPIPE_DEBUG", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Cache.Dir = "/tmp/artifacts"
	cfg.Logging.Debug = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Cache.Dir != "/tmp/artifacts" {
		t.Errorf("expected Cache.Dir to round-trip, got %q", loaded.Cache.Dir)
	}
	if !loaded.Logging.Debug {
		t.Error("expected Logging.Debug to round-trip as true")
	}
}

func TestEnvOverrideTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Cache.Dir = "/from/file"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Setenv("LLMPIPE_CACHE_DIR", "/from/env")
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Cache.Dir != "/from/env" {
		t.Errorf("expected env override to win, got %q", loaded.Cache.Dir)
	}
}

func TestCatalogPathOrDefault(t *testing.T) {
	cfg := DefaultConfig()
	path, err := cfg.CatalogPathOrDefault()
	if err != nil {
		t.Fatalf("CatalogPathOrDefault() error = %v", err)
	}
	home, _ := os.UserHomeDir()
	if filepath.Dir(path) != home {
		t.Errorf("expected default catalog path under home dir, got %q", path)
	}

	cfg.Cache.CatalogPath = "/custom/path.json"
	path, err = cfg.CatalogPathOrDefault()
	if err != nil {
		t.Fatalf("CatalogPathOrDefault() error = %v", err)
	}
	if path != "/custom/path.json" {
		t.Errorf("expected override to be used, got %q", path)
	}
}
