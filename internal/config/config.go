// Package config loads schemaviz settings from TOML files and the environment.
//
// Settings are read from the first file found in this order:
//
//  1. The path passed to [Load] (the --config flag)
//  2. ./schemaviz.toml
//  3. $XDG_CONFIG_HOME/schemaviz/config.toml (or ~/.config/schemaviz/config.toml)
//
// A missing file is not an error; [Default] values apply. A .env file in the
// working directory is loaded first, then SCHEMAVIZ_* variables override the
// file. Command-line flags override both.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/schemaviz/pkg/errors"
	"github.com/matzehuels/schemaviz/pkg/pipeline"
)

const (
	appName = "schemaviz"

	// LocalFile is the project-local config file name.
	LocalFile = "schemaviz.toml"

	// DefaultAddr is the listen address for `schemaviz serve`.
	DefaultAddr = ":8080"
)

// Environment variables that override file settings.
const (
	EnvCacheDir = "SCHEMAVIZ_CACHE_DIR"
	EnvRedisURL = "SCHEMAVIZ_REDIS_URL"
	EnvAddr     = "SCHEMAVIZ_ADDR"
)

// Config is the full schemaviz configuration.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	path string
}

// RenderConfig holds default render options.
type RenderConfig struct {
	RankDir  string   `toml:"rankdir"` // empty keeps the Graphviz default (TB)
	FontSize int      `toml:"fontsize"`
	Formats  []string `toml:"formats"`
}

// CacheConfig controls artifact caching.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`       // empty means the XDG cache directory
	TTL      string `toml:"ttl"`       // Go duration, e.g. "24h"
	RedisURL string `toml:"redis_url"` // used by serve when set
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			FontSize: pipeline.DefaultFontSize,
			Formats:  append([]string(nil), pipeline.DefaultFormats...),
		},
		Cache: CacheConfig{
			TTL: pipeline.DefaultCacheTTL.String(),
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
	}
}

// Load reads the configuration. An explicit path must exist; otherwise the
// search order in the package documentation applies.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	file, err := resolve(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		md, err := toml.DecodeFile(file, cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", file)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s",
				file, strings.Join(keys, ", "))
		}
		cfg.path = file
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolve(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return path, nil
	}
	for _, candidate := range searchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func searchPaths() []string {
	paths := []string{LocalFile}
	if dir, err := configDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.toml"))
	}
	return paths
}

// configDir returns the config directory using XDG standard (~/.config/schemaviz/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks every setting that has a fixed domain.
func (c *Config) Validate() error {
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if err := pipeline.ValidateRankDir(c.Render.RankDir); err != nil {
		return err
	}
	if c.Render.FontSize <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render.fontsize must be positive, got %d", c.Render.FontSize)
	}
	if _, err := c.TTLDuration(); err != nil {
		return err
	}
	return nil
}

// TTLDuration parses the cache TTL. Empty means the pipeline default.
func (c *Config) TTLDuration() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return pipeline.DefaultCacheTTL, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "cache.ttl %q", c.Cache.TTL)
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	return d, nil
}

// Path returns the file the configuration was read from, or "" when only
// defaults and the environment were used.
func (c *Config) Path() string {
	return c.path
}
