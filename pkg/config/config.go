// Package config loads slidetype's TOML configuration.
//
// The file lives at $XDG_CONFIG_HOME/slidetype/config.toml unless a path is
// given explicitly. Every key is optional; a missing file yields [Default].
//
//	[canvas]
//	width = 1080
//	height = 1350
//
//	[fonts]
//	dirs = ["~/fonts"]
//	default_family = "Inter"
//	system_fallbacks = ["DejaVuSans.ttf"]
//	builtin = true
//
//	[cache]
//	backend = "file"   # file, redis or none
//	ttl = "168h"
//	dir = ""
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	max_upload_mb = 20
//
//	[batch]
//	concurrency = 4
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/slidetype/pkg/cache"
	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/fonts"
	"github.com/matzehuels/slidetype/pkg/pipeline"
	"github.com/matzehuels/slidetype/pkg/raster"
	"github.com/matzehuels/slidetype/pkg/style"
)

// Limits on configurable values.
const (
	MaxCanvasSide    = 8192
	MaxConcurrency   = 256
	MaxUploadLimitMB = 512
)

// Config is the complete configuration.
type Config struct {
	Canvas Canvas `toml:"canvas"`
	Fonts  Fonts  `toml:"fonts"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
	Batch  Batch  `toml:"batch"`
}

// Canvas is the canonical output size every background is normalized to.
type Canvas struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Fonts configures the font provider.
type Fonts struct {
	Dirs            []string `toml:"dirs"`
	DefaultFamily   string   `toml:"default_family"`
	SystemFallbacks []string `toml:"system_fallbacks"`
	Builtin         bool     `toml:"builtin"`
}

// Cache selects the render cache backend.
type Cache struct {
	Backend   string   `toml:"backend"`
	TTL       Duration `toml:"ttl"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr        string `toml:"addr"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// Batch configures carousel rendering.
type Batch struct {
	Concurrency int `toml:"concurrency"`
}

// Duration is a time.Duration written as a Go duration string ("36h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Canvas: Canvas{Width: raster.DefaultWidth, Height: raster.DefaultHeight},
		Fonts: Fonts{
			DefaultFamily:   style.DefaultFamily,
			SystemFallbacks: append([]string(nil), fonts.DefaultSystemFallbacks...),
			Builtin:         true,
		},
		Cache: Cache{
			Backend:   cache.BackendFile,
			TTL:       Duration{pipeline.TTLRender},
			RedisAddr: cache.DefaultRedisAddr,
		},
		Server: Server{Addr: ":8080", MaxUploadMB: 20},
		Batch:  Batch{Concurrency: pipeline.DefaultConcurrency},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/slidetype/config.toml, falling back
// to the platform's user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "slidetype", "config.toml")
}

// Load reads path on top of [Default]. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML data on top of [Default] and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Fonts.Dirs = expandHome(cfg.Fonts.Dirs)
	return cfg, nil
}

// Validate checks every value against its range.
func (c Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Width > MaxCanvasSide,
		c.Canvas.Height <= 0 || c.Canvas.Height > MaxCanvasSide:
		return errors.New(errors.ErrCodeInvalidConfig, "canvas %dx%d out of range (1..%d)",
			c.Canvas.Width, c.Canvas.Height, MaxCanvasSide)
	case strings.TrimSpace(c.Fonts.DefaultFamily) == "":
		return errors.New(errors.ErrCodeInvalidConfig, "fonts.default_family is required")
	case c.Cache.TTL.Duration < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	case c.Server.MaxUploadMB <= 0 || c.Server.MaxUploadMB > MaxUploadLimitMB:
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_upload_mb %d out of range (1..%d)",
			c.Server.MaxUploadMB, MaxUploadLimitMB)
	case c.Batch.Concurrency <= 0 || c.Batch.Concurrency > MaxConcurrency:
		return errors.New(errors.ErrCodeInvalidConfig, "batch.concurrency %d out of range (1..%d)",
			c.Batch.Concurrency, MaxConcurrency)
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q must be one of file, redis, none", c.Cache.Backend)
	}
	return nil
}

// MaxUploadBytes returns the server upload limit in bytes.
func (s Server) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// CacheOptions converts the cache section into [cache.Options].
func (c Cache) Options() cache.Options {
	return cache.Options{Backend: c.Backend, Dir: c.Dir, RedisAddr: c.RedisAddr}
}

// ProviderOptions converts the fonts section into provider options. Font
// directories are loaded separately with [fonts.Provider.LoadDir].
func (f Fonts) ProviderOptions() []fonts.Option {
	opts := []fonts.Option{fonts.WithSystemFallbacks(f.SystemFallbacks)}
	if !f.Builtin {
		opts = append(opts, fonts.WithoutBuiltin())
	}
	return opts
}

func expandHome(paths []string) []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		if p == "~" || strings.HasPrefix(p, "~/") {
			p = filepath.Join(home, p[1:])
		}
		out[i] = p
	}
	return out
}
