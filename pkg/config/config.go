// Package config loads the pkgfed feed catalog and gather defaults from
// a TOML file.
//
// The default location is ~/.config/pkgfed/feeds.toml:
//
//	target = "net8.0"
//	include_prerelease = false
//	max_parallelism = 4
//	cache = "file"
//
//	[[feeds]]
//	name = "main"
//	kind = "remote"
//	url = "https://feeds.example.com"
//
//	[[feeds]]
//	name = "lab"
//	kind = "local"
//	path = "/srv/feeds/lab"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/pkgfed/pkgfed/pkg/errors"
	"github.com/pkgfed/pkgfed/pkg/feed"
	"github.com/pkgfed/pkgfed/pkg/framework"
)

// Cache backend names accepted in the config file.
const (
	CacheFile  = "file"
	CacheNone  = "none"
	CacheRedis = "redis"
	CacheMongo = "mongo"
)

// Config is the parsed feed catalog plus gather defaults.
type Config struct {
	Target            string       `toml:"target"`
	IncludePrerelease bool         `toml:"include_prerelease"`
	MaxParallelism    int          `toml:"max_parallelism"`
	Cache             string       `toml:"cache"`
	Redis             RedisConfig  `toml:"redis"`
	Mongo             MongoConfig  `toml:"mongo"`
	Feeds             []FeedConfig `toml:"feeds"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr        string `toml:"addr"`
	PasswordEnv string `toml:"password_env"`
}

// MongoConfig configures the mongo cache backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// FeedConfig is one catalog entry. Enabled defaults to true when
// omitted.
type FeedConfig struct {
	Name      string `toml:"name"`
	Kind      string `toml:"kind"`
	URL       string `toml:"url,omitempty"`
	Path      string `toml:"path,omitempty"`
	Enabled   *bool  `toml:"enabled,omitempty"`
	APIKeyEnv string `toml:"api_key_env,omitempty"`
}

// Default returns the built-in configuration: no feeds, file cache,
// unconstrained target.
func Default() *Config {
	return &Config{
		Target: "any",
		Cache:  CacheFile,
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "pkgfed", "feeds.toml"), nil
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the catalog for well-formed, uniquely named feeds and
// a known target framework and cache backend.
func (c *Config) Validate() error {
	if _, err := framework.Parse(c.Target); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFramework, err, "config target")
	}

	switch c.Cache {
	case "", CacheFile, CacheNone, CacheRedis, CacheMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache)
	}

	seen := make(map[string]bool, len(c.Feeds))
	for _, fc := range c.Feeds {
		if seen[fc.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "duplicate feed name %q", fc.Name)
		}
		seen[fc.Name] = true
		if err := fc.source().Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "feed %q", fc.Name)
		}
	}
	return nil
}

// Sources converts the catalog entries to source references.
func (c *Config) Sources() []*feed.Source {
	out := make([]*feed.Source, len(c.Feeds))
	for i, fc := range c.Feeds {
		out[i] = fc.source()
	}
	return out
}

// TargetFramework parses the configured target.
func (c *Config) TargetFramework() framework.Framework {
	fw, err := framework.Parse(c.Target)
	if err != nil {
		return framework.Any
	}
	return fw
}

// Write renders the config as TOML at path, creating parent directories.
func (c *Config) Write(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func (fc FeedConfig) source() *feed.Source {
	enabled := true
	if fc.Enabled != nil {
		enabled = *fc.Enabled
	}
	return &feed.Source{
		Name:      fc.Name,
		Kind:      feed.Kind(fc.Kind),
		URL:       fc.URL,
		Path:      fc.Path,
		Enabled:   enabled,
		APIKeyEnv: fc.APIKeyEnv,
	}
}
