package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/tsa-lab/tsaview/internal/config"
	"github.com/tsa-lab/tsaview/pkg/cache"
	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tsaview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config     *config.Config
	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Backend Factories
// =============================================================================

// newCache opens the configured artifact cache. A file cache that cannot be
// created degrades to no caching; Redis failures are returned.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache {
		cfg.Backend = "none"
	}

	var (
		inner cache.Cache
		err   error
	)
	switch cfg.Backend {
	case "none":
		inner = cache.NewNullCache()
	case "redis":
		inner, err = cache.NewRedisCache(ctx, cache.RedisOptions{URL: cfg.RedisURL, Prefix: cfg.Prefix})
		if err != nil {
			return nil, err
		}
	default:
		inner, err = cache.NewFileCache(cfg.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Dir, "err", err)
			inner = cache.NewNullCache()
		}
	}
	c.Logger.Debug("cache ready", "backend", cfg.Backend)
	return cache.Instrument(inner), nil
}

// newStore opens the configured graph store. A path argument overrides the
// configured system file and selects the memory backend.
func (c *CLI) newStore(ctx context.Context, path string) (store.Store, error) {
	cfg := c.Config.Store
	if path != "" {
		cfg.Backend, cfg.Path = "memory", path
	}

	switch cfg.Backend {
	case "mongo":
		c.Logger.Debug("connecting to MongoDB", "db", cfg.Database, "collection", cfg.Collection)
		return store.NewMongo(ctx, store.MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
	default:
		if cfg.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no system file: pass one or set store.path")
		}
		return store.LoadMemory(cfg.Path)
	}
}
