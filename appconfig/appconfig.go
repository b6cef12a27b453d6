// Package appconfig loads and saves the YAML configuration for llmpipe
// CLI wrappers, following the DefaultConfig/Load/Save shape of codeNERD's
// internal/config.Config: a struct of nested config blocks, a function
// returning sane defaults, a Load that falls back to defaults when the file
// is absent, and environment variable overrides applied after YAML parsing.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheConfig controls where the artifact cache and its catalog live.
type CacheConfig struct {
	// Dir is the directory artifact files are written to. Empty means
	// os.TempDir().
	Dir string `yaml:"dir"`
	// CatalogPath is the on-disk catalog file. Empty means
	// "<home>/.llm-artifact-cache.json".
	CatalogPath string `yaml:"catalog_path"`
}

// HTTPConfig controls the shared HTTP client used for provider listing and
// (in a full implementation) completion calls.
type HTTPConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	RetryInitialMs  int           `yaml:"retry_initial_ms"`
	RetryMaxMs      int           `yaml:"retry_max_ms"`
	RetryMaxRetries int           `yaml:"retry_max_retries"`
}

// LoggingConfig controls the zap logger built by applog.New.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
	JSON  bool `yaml:"json"`
}

// ProviderOverride lets a deployment point a known provider at a
// self-hosted endpoint without recompiling the registry.
type ProviderOverride struct {
	BaseURL string `yaml:"base_url"`
}

// Config holds all llmpipe configuration.
type Config struct {
	Cache     CacheConfig                 `yaml:"cache"`
	HTTP      HTTPConfig                  `yaml:"http"`
	Logging   LoggingConfig               `yaml:"logging"`
	Providers map[string]ProviderOverride `yaml:"providers"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{},
		HTTP: HTTPConfig{
			Timeout:         30 * time.Second,
			RetryInitialMs:  1000,
			RetryMaxMs:      30000,
			RetryMaxRetries: 3,
		},
		Logging:   LoggingConfig{},
		Providers: map[string]ProviderOverride{},
	}
}

// Load reads configuration from a YAML file, falling back to defaults if
// the file does not exist. Environment variables are applied last and take
// precedence over file contents.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides layers environment variables over whatever was loaded
// from YAML, mirroring codeNERD's Config.applyEnvOverrides precedence.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("LLMPIPE_CACHE_DIR"); dir != "" {
		c.Cache.Dir = dir
	}
	if path := os.Getenv("LLMPIPE_CATALOG_PATH"); path != "" {
		c.Cache.CatalogPath = path
	}
	if v := os.Getenv("LLMPIPE_DEBUG"); v == "1" || v == "true" {
		c.Logging.Debug = true
	}
}

// CatalogPathOrDefault resolves the effective catalog file path: the configured
// override, or the user's home directory fixed filename per spec.md §6.
func (c *Config) CatalogPathOrDefault() (string, error) {
	if c.Cache.CatalogPath != "" {
		return c.Cache.CatalogPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".llm-artifact-cache.json"), nil
}

// ArtifactDirOrDefault resolves the directory artifact files are written to.
func (c *Config) ArtifactDirOrDefault() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return os.TempDir()
}
