// Package cli implements the pkgfed command-line interface.
//
// This package provides commands for gathering transitive dependency
// metadata across configured package feeds, rendering the result as a
// graph, hosting a folder feed, and managing the response cache. The CLI
// is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - gather: Collect the dependency metadata closure of a package release
//   - graph: Gather and render the closure as DOT or SVG
//   - serve: Host a folder feed over HTTP
//   - cache: Manage the feed response cache
//   - config: Initialize or inspect the feed catalog
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pkgfed/pkgfed/pkg/buildinfo"
	"github.com/pkgfed/pkgfed/pkg/cache"
	"github.com/pkgfed/pkgfed/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "pkgfed"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string // --config override, empty means default location
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pkgfed gathers dependency metadata across federated package feeds",
		Long:         `pkgfed is a package-management client for federated feeds: it collects the complete transitive dependency metadata of a package release by querying every configured feed to a fixed point, keeping per-feed provenance for downstream version resolution.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to feeds.toml (default: user config dir)")

	root.AddCommand(c.gatherCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())

	return root
}

// loadConfig reads the catalog from --config or the default location.
// A missing default file falls back to the built-in defaults so that
// commands not needing feeds still work.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		c.Logger.Debug("no config file, using defaults", "path", path)
		return config.Default(), nil
	}
	return cfg, nil
}

// openCache builds the cache backend named in the config.
func (c *CLI) openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		password := envValue(cfg.Redis.PasswordEnv)
		return cache.NewRedisCache(ctx, cfg.Redis.Addr, password, appName+":")
	case config.CacheMongo:
		return cache.NewMongoCache(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	default:
		dir, err := cache.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("locate cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	}
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// envValue resolves an env var reference from the config, tolerating an
// empty name.
func envValue(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
