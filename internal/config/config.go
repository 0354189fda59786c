package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Catalog sources.
const (
	CatalogSourceFile  = "file"
	CatalogSourceRedis = "redis"
)

// Config holds the cinematch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	OMDb      OMDbConfig      `yaml:"omdb"`
	Recommend RecommendConfig `yaml:"recommend"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
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

	CORSOrigins []string        `yaml:"cors_origins"` // empty = no CORS headers
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig limits /recommendations per client IP.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"` // 0 = unlimited
	WindowSec int `yaml:"window_sec"`
}

// CatalogConfig says where the precomputed similarity artifact is loaded from.
type CatalogConfig struct {
	Source string `yaml:"source"` // file, redis (default: file)
	Path   string `yaml:"path"`   // file source; .gz is decompressed

	Redis CatalogRedisConfig `yaml:"redis"`
}

// CatalogRedisConfig holds the redis catalog source settings.
type CatalogRedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Key              string   `yaml:"key"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// OMDbConfig holds metadata provider settings. An empty APIKey means degraded mode.
type OMDbConfig struct {
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	TimeoutSec        int           `yaml:"timeout_sec"`
	PlaceholderPoster string        `yaml:"placeholder_poster"`
	RatePerSec        float64       `yaml:"rate_per_sec"` // 0 = unlimited
	Burst             int           `yaml:"burst"`
	Breaker           BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the metadata provider.
type BreakerConfig struct {
	ConsecutiveFailures uint32 `yaml:"consecutive_failures"` // 0 = never trip
	OpenSec             int    `yaml:"open_sec"`
}

// RecommendConfig holds recommendation pipeline settings.
type RecommendConfig struct {
	Count            int    `yaml:"count"`
	FetchConcurrency int    `yaml:"fetch_concurrency"`
	ExcludeSelf      string `yaml:"exclude_self"` // position, identity (default: position)
	MaxSimilar       int    `yaml:"max_similar"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the process
// environment first; variables already set take precedence.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it and applies defaults and validation.
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// A recommendation may wait on upstream fetches bounded by omdb.timeout_sec.
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimit.WindowSec <= 0 {
		c.HTTP.RateLimit.WindowSec = 60
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = CatalogSourceFile
	}
	if c.Catalog.Redis.Key == "" {
		c.Catalog.Redis.Key = "cinematch:catalog"
	}
	if c.Catalog.Redis.ReadinessTimeout <= 0 {
		c.Catalog.Redis.ReadinessTimeout = 10
	}
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = "http://www.omdbapi.com/"
	}
	if c.OMDb.TimeoutSec <= 0 {
		c.OMDb.TimeoutSec = 10
	}
	if c.OMDb.PlaceholderPoster == "" {
		c.OMDb.PlaceholderPoster = "https://via.placeholder.com/500x750?text=No+Image"
	}
	if c.OMDb.Breaker.OpenSec <= 0 {
		c.OMDb.Breaker.OpenSec = 60
	}
	if c.Recommend.Count <= 0 {
		c.Recommend.Count = 8
	}
	if c.Recommend.FetchConcurrency <= 0 {
		c.Recommend.FetchConcurrency = 8
	}
	if c.Recommend.ExcludeSelf == "" {
		c.Recommend.ExcludeSelf = "position"
	}
	if c.Recommend.MaxSimilar <= 0 {
		c.Recommend.MaxSimilar = 50
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Catalog.Source {
	case CatalogSourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for source %q", CatalogSourceFile)
		}
	case CatalogSourceRedis:
		if len(c.Catalog.Redis.Addrs) == 0 {
			return fmt.Errorf("catalog.redis.addrs is required for source %q", CatalogSourceRedis)
		}
	default:
		return fmt.Errorf("catalog.source must be \"file\" or \"redis\", got %q", c.Catalog.Source)
	}
	switch c.Recommend.ExcludeSelf {
	case "position", "identity":
		// ok
	default:
		return fmt.Errorf(
			"recommend.exclude_self must be \"position\" or \"identity\", got %q",
			c.Recommend.ExcludeSelf,
		)
	}
	if c.HTTP.RateLimit.Requests < 0 {
		return fmt.Errorf("http.rate_limit.requests must not be negative, got %d", c.HTTP.RateLimit.Requests)
	}
	if c.OMDb.RatePerSec < 0 {
		return fmt.Errorf("omdb.rate_per_sec must not be negative, got %v", c.OMDb.RatePerSec)
	}
	if c.Recommend.Count > 8 {
		return fmt.Errorf("recommend.count must be at most 8, got %d", c.Recommend.Count)
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
