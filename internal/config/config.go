// Package config loads tsaview settings.
//
// Settings come from three layers, later ones winning: built-in defaults,
// the TOML file at [Path] (or an explicit path), and TSAVIZ_* environment
// variables. Command-line flags are applied on top by the CLI.
//
// Environment variables name a section and a key separated by the first
// underscore: TSAVIZ_SERVER_ADDR sets server.addr and
// TSAVIZ_CACHE_REDIS_URL sets cache.redis_url. Comma separated values fill
// list settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/tsa-lab/tsaview/pkg/errors"
)

const (
	appName   = "tsaview"
	envPrefix = "TSAVIZ_"
)

// Config holds tsaview configuration.
type Config struct {
	Log    LogConfig    `toml:"log" koanf:"log"`
	Render RenderConfig `toml:"render" koanf:"render"`
	Server ServerConfig `toml:"server" koanf:"server"`
	Cache  CacheConfig  `toml:"cache" koanf:"cache"`
	Store  StoreConfig  `toml:"store" koanf:"store"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level     string `toml:"level" koanf:"level"`         // "debug", "info", "warn", "error"
	Formatter string `toml:"formatter" koanf:"formatter"` // "text", "json", "logfmt"
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Width       float64 `toml:"width" koanf:"width"`
	Height      float64 `toml:"height" koanf:"height"`
	Color       string  `toml:"color" koanf:"color"` // empty rotates the palette
	Animate     bool    `toml:"animate" koanf:"animate"`
	Concurrency int     `toml:"concurrency" koanf:"concurrency"`
}

// ServerConfig configures `tsaview serve`.
type ServerConfig struct {
	Addr            string        `toml:"addr" koanf:"addr"`
	AllowedOrigins  []string      `toml:"allowed_origins" koanf:"allowed_origins"`
	ReadTimeout     time.Duration `toml:"read_timeout" koanf:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout" koanf:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" koanf:"shutdown_timeout"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend  string        `toml:"backend" koanf:"backend"` // "file", "redis", "none"
	Dir      string        `toml:"dir" koanf:"dir"`
	RedisURL string        `toml:"redis_url" koanf:"redis_url"`
	Prefix   string        `toml:"prefix" koanf:"prefix"`
	TTL      time.Duration `toml:"ttl" koanf:"ttl"`
}

// StoreConfig selects where served graphs come from.
type StoreConfig struct {
	Backend    string `toml:"backend" koanf:"backend"` // "memory", "mongo"
	Path       string `toml:"path" koanf:"path"`
	MongoURI   string `toml:"mongo_uri" koanf:"mongo_uri"`
	Database   string `toml:"database" koanf:"database"`
	Collection string `toml:"collection" koanf:"collection"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Formatter: "text"},
		Render: RenderConfig{Width: 800, Height: 600, Concurrency: 4},
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{Backend: "file", Dir: CacheDir(), Prefix: appName + ":", TTL: 7 * 24 * time.Hour},
		Store: StoreConfig{Backend: "memory", Database: "tsaview", Collection: "graphs"},
	}
}

// Dir returns the tsaview config directory ($XDG_CONFIG_HOME/tsaview).
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the cache directory using XDG standard (~/.cache/tsaview/).
func CacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

// Load reads the config file at path, or [Path] when path is empty, then
// overlays TSAVIZ_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "reading config %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := overlayEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayEnv(cfg *Config) error {
	k := koanf.New(".")
	provider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		name := strings.ToLower(strings.TrimPrefix(key, envPrefix))
		section, field, ok := strings.Cut(name, "_")
		if !ok {
			return "", nil
		}
		if strings.Contains(value, ",") {
			return section + "." + field, strings.Split(value, ",")
		}
		return section + "." + field, value
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading env overrides: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "environment overrides")
	}
	return nil
}

// Save writes the configuration as TOML to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

var (
	validLevels     = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormatters = map[string]bool{"text": true, "json": true, "logfmt": true}
	validCaches     = map[string]bool{"file": true, "redis": true, "none": true}
	validStores     = map[string]bool{"memory": true, "mongo": true}
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	v := errors.NewValidator(errors.ErrCodeInvalidInput, "config")
	if !validLevels[c.Log.Level] {
		v.Add("log.level", "%q is not one of debug, info, warn, error", c.Log.Level)
	}
	if !validFormatters[c.Log.Formatter] {
		v.Add("log.formatter", "%q is not one of text, json, logfmt", c.Log.Formatter)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		v.Add("render", "size %gx%g must be positive", c.Render.Width, c.Render.Height)
	}
	if c.Render.Concurrency < 1 {
		v.Add("render.concurrency", "must be at least 1")
	}
	if !validCaches[c.Cache.Backend] {
		v.Add("cache.backend", "%q is not one of file, redis, none", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		v.Add("cache.redis_url", "required for the redis backend")
	}
	if !validStores[c.Store.Backend] {
		v.Add("store.backend", "%q is not one of memory, mongo", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		v.Add("store.mongo_uri", "required for the mongo backend")
	}
	return v.Err()
}
