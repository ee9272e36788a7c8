// Package config loads landsketch settings from a YAML/JSON file, a .env file
// and LANDSKETCH_* environment variables, in increasing precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/landsketch/internal/logging"
	"github.com/aretw0/landsketch/pkg/persistence/middleware"
	"github.com/aretw0/landsketch/pkg/submit"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvEndpoint  = "LANDSKETCH_ENDPOINT"
	EnvStore     = "LANDSKETCH_STORE"
	EnvRedisAddr = "LANDSKETCH_REDIS_ADDR"
	EnvLogLevel  = "LANDSKETCH_LOG_LEVEL"
	EnvAddr      = "LANDSKETCH_ADDR"
	EnvStoreKey  = "LANDSKETCH_STORE_KEY"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	Endpoint   string       `yaml:"endpoint" json:"endpoint"`
	SearchPath string       `yaml:"search_path" json:"search_path"`
	Canvas     CanvasConfig `yaml:"canvas" json:"canvas"`
	Store      StoreConfig  `yaml:"store" json:"store"`
	LogLevel   string       `yaml:"log_level" json:"log_level"`
	Addr       string       `yaml:"addr" json:"addr"`
}

// CanvasConfig is the logical raster size.
type CanvasConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Driver string      `yaml:"driver" json:"driver"`
	Path   string      `yaml:"path" json:"path"`
	Redis  RedisConfig `yaml:"redis" json:"redis"`

	// EncryptionKey seals stored values with AES-256-GCM when set
	// (32 bytes, base64). FallbackKeys still decrypt during key rotation.
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys" json:"fallback_keys"`
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	TTL      string `yaml:"ttl" json:"ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint:   "http://localhost:8000",
		SearchPath: submit.DefaultPath,
		Canvas:     CanvasConfig{Width: 570, Height: 570},
		Store: StoreConfig{
			Driver: DriverMemory,
			Path:   filepath.Join(".landsketch", "store"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "landsketch:",
			},
		},
		LogLevel: "info",
		Addr:     ":8080",
	}
}

// LoadEnvFile loads variables from a .env file without overriding variables
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty or missing path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if strings.ToLower(filepath.Ext(path)) == ".json" {
				if err := json.Unmarshal(data, cfg); err != nil {
					return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
				}
			} else {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
				}
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvStore); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvStoreKey); v != "" {
		c.Store.EncryptionKey = v
	}
}

// Validate checks every field that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.SearchURL(); err != nil {
		errs = append(errs, err)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height))
	}
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if _, err := c.Store.Redis.TTLDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Store.Encryption(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SearchURL is the full URL of the search route.
func (c *Config) SearchURL() (string, error) {
	return submit.Endpoint(c.Endpoint, c.SearchPath)
}

// Encryption returns the parsed encryption settings, or nil when values are
// stored in the clear.
func (s StoreConfig) Encryption() (*middleware.EncryptionConfig, error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, errors.New("fallback_keys set without encryption_key")
		}
		return nil, nil
	}
	active, err := middleware.ParseKey(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key: %w", err)
	}
	cfg := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range s.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, nil
}

// TTLDuration parses TTL. An empty value or a bare number of seconds is accepted.
func (r RedisConfig) TTLDuration() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(r.TTL); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid redis ttl %q: %w", r.TTL, err)
	}
	return d, nil
}
