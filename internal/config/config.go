package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the booruq service configuration.
type Config struct {
	HTTP    HTTPConfig     `yaml:"http"`
	Auth    AuthConfig     `yaml:"auth"`
	Logging LoggingConfig  `yaml:"logging"`
	Cache   CacheConfig    `yaml:"cache"`
	Limits  LimitsConfig   `yaml:"limits"`
	Storage StorageConfig  `yaml:"storage"`
	Filters []FilterConfig `yaml:"filters"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig sizes the compiled query cache.
type CacheConfig struct {
	Size   int `yaml:"size"`
	TTLSec int `yaml:"ttl_sec"` // bounds how stale "N days ago" can get
}

// LimitsConfig bounds a single request.
type LimitsConfig struct {
	MaxImages      int `yaml:"max_images"`
	MaxQueryLength int `yaml:"max_query_length"`
}

// StorageConfig holds optional filter persistence settings.
// An empty Driver keeps filters in memory only.
type StorageConfig struct {
	Driver              string   `yaml:"driver"` // "", redis, valkey
	Addrs               []string `yaml:"addrs"`
	Username            string   `yaml:"username"`
	Password            string   `yaml:"password"`
	DB                  int      `yaml:"db"`
	KeyPrefix           string   `yaml:"key_prefix"`
	ReadinessTimeoutSec int      `yaml:"readiness_timeout_sec"`
	Standalone          bool     `yaml:"standalone"`
}

// Enabled reports whether a persistent store is configured.
func (s StorageConfig) Enabled() bool { return s.Driver != "" }

// FilterConfig is a content filter definition.
type FilterConfig struct {
	ID               int64   `yaml:"id"`
	Name             string  `yaml:"name"`
	Description      string  `yaml:"description"`
	HiddenTagIDs     []int64 `yaml:"hidden_tag_ids"`
	SpoileredTagIDs  []int64 `yaml:"spoilered_tag_ids"`
	HiddenComplex    string  `yaml:"hidden_complex"`
	SpoileredComplex string  `yaml:"spoilered_complex"`
}

// Load reads configuration from a YAML file by environment name (local, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 1024
	}
	if c.Cache.TTLSec == 0 {
		c.Cache.TTLSec = 60
	}
	if c.Limits.MaxImages == 0 {
		c.Limits.MaxImages = 1000
	}
	if c.Limits.MaxQueryLength == 0 {
		c.Limits.MaxQueryLength = 4096
	}
	if c.Storage.Enabled() {
		if c.Storage.KeyPrefix == "" {
			c.Storage.KeyPrefix = "booruq:"
		}
		if c.Storage.ReadinessTimeoutSec <= 0 {
			c.Storage.ReadinessTimeoutSec = 30
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative, got %d", c.Cache.TTLSec)
	}
	if c.Limits.MaxImages < 0 {
		return fmt.Errorf("limits.max_images must be positive, got %d", c.Limits.MaxImages)
	}
	if c.Limits.MaxQueryLength < 0 {
		return fmt.Errorf("limits.max_query_length must be positive, got %d", c.Limits.MaxQueryLength)
	}
	switch c.Storage.Driver {
	case "":
	case "redis", "valkey":
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be redis or valkey, got %q", c.Storage.Driver)
	}

	seen := make(map[string]bool, len(c.Filters))
	for i, f := range c.Filters {
		if f.Name == "" {
			return fmt.Errorf("filters[%d].name is required", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("filters[%d]: duplicate filter name %q", i, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
