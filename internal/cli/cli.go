// Package cli implements the slidetype command-line interface.
//
// # Commands
//
//   - render: Draw a title and body onto one background
//   - suggest: Propose a legible style for a background
//   - batch: Render every slide of a carousel manifest
//   - serve: Run the HTTP render service
//   - fonts: List resolvable font families
//   - cache: Manage the render cache
//
// # Configuration
//
// Settings are read from $XDG_CONFIG_HOME/slidetype/config.toml, or from the
// file given with --config. See package config for the format.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried through the command's context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slidetype/pkg/buildinfo"
	"github.com/matzehuels/slidetype/pkg/cache"
	"github.com/matzehuels/slidetype/pkg/config"
	"github.com/matzehuels/slidetype/pkg/engine"
	"github.com/matzehuels/slidetype/pkg/fonts"
	"github.com/matzehuels/slidetype/pkg/pipeline"
	"github.com/matzehuels/slidetype/pkg/style"
)

// appName is the application name used for directories and display.
const appName = "slidetype"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a CLI logging to w at level, with the default configuration.
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

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration file is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Slidetype lays out text on carousel slide backgrounds",
		Long:         `Slidetype fits a title and body into percentage-defined boxes on a background image, picking the largest font size that fits, and draws them with stroke and shadow.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.suggestCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.fontsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", path)
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newProvider creates a font provider with every configured font directory loaded.
func (c *CLI) newProvider() *fonts.Provider {
	opts := append(c.Config.Fonts.ProviderOptions(), fonts.WithLogger(c.Logger))
	p := fonts.NewProvider(opts...)
	for _, dir := range c.Config.Fonts.Dirs {
		n, err := p.LoadDir(dir)
		if err != nil {
			c.Logger.Warn("font directory skipped", "dir", dir, "err", err)
			continue
		}
		c.Logger.Debug("fonts loaded", "dir", dir, "faces", n)
	}
	return p
}

func (c *CLI) newEngine() *engine.Engine {
	return engine.New(c.newProvider(),
		engine.WithCanvasSize(c.Config.Canvas.Width, c.Config.Canvas.Height),
		engine.WithLogger(c.Logger))
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(c.newEngine(), ch, nil, c.Logger)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		r.TTL = ttl
	}
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := c.Config.Cache.Options()
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}
	return cache.Open(ctx, opts)
}

// baseStyle is the style user styles are decoded on top of.
func (c *CLI) baseStyle() style.TextStyle {
	st := style.Default()
	st.FontFamily = c.Config.Fonts.DefaultFamily
	return st
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the render cache directory using XDG standard (~/.cache/slidetype/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
