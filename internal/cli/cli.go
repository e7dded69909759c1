// Package cli implements the schemaviz command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaviz/internal/config"
	"github.com/matzehuels/schemaviz/pkg/buildinfo"
	"github.com/matzehuels/schemaviz/pkg/cache"
	"github.com/matzehuels/schemaviz/pkg/observability"
	"github.com/matzehuels/schemaviz/pkg/pipeline"
	"github.com/matzehuels/schemaviz/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "schemaviz"
)

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

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level the pipeline and
// cache events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := &loggingHooks{logger: c.Logger}
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "schemaviz",
		Short:        "Schemaviz draws record schemas as Graphviz class diagrams",
		Long:         `Schemaviz reads a schema of records and typed fields (YAML, JSON, TOML, HCL or GraphQL) and renders it as a class diagram: one box per record, one row per field, and an arrow from every field that references another record.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./schemaviz.toml, then ~/.config/schemaviz/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if p := cfg.Path(); p != "" {
		c.Logger.Debug("loaded config", "path", p)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// default.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg != nil && c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/schemaviz/).
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

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .dot, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if render.ValidFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// =============================================================================
// Options Helpers
// =============================================================================

// schemaFlags are the flags shared by every command that reads a schema.
type schemaFlags struct {
	inputType string
	focus     string
	depth     int
}

func (f *schemaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.inputType, "input-type", "", "schema type: yaml, toml, hcl, graphql (default: from extension)")
	cmd.Flags().StringVar(&f.focus, "focus", "", "only show this record and what it references")
	cmd.Flags().IntVar(&f.depth, "depth", 0, "reference hops to follow from --focus (0 = unlimited)")
}

// renderFlags are the flags of commands that produce diagrams.
type renderFlags struct {
	schemaFlags
	formats  string
	rankdir  string
	fontSize int
	noCache  bool
	refresh  bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	f.schemaFlags.register(cmd)
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): "+strings.Join(render.Formats, ", ")+" (comma-separated, default svg)")
	cmd.Flags().StringVar(&f.rankdir, "rankdir", "", "layout direction: "+strings.Join(pipeline.RankDirs, ", "))
	cmd.Flags().IntVar(&f.fontSize, "fontsize", 0, "font size for records and fields")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-render and overwrite cached artifacts")
}

// options layers flags over config over pipeline defaults.
func (c *CLI) options(input string, f *renderFlags) (pipeline.Options, error) {
	opts := pipeline.Options{
		Input:     input,
		InputType: f.inputType,
		Focus:     f.focus,
		Depth:     f.depth,
		RankDir:   c.cfg.Render.RankDir,
		FontSize:  c.cfg.Render.FontSize,
		Formats:   append([]string(nil), c.cfg.Render.Formats...),
		Refresh:   f.refresh,
		Logger:    c.Logger,
	}

	ttl, err := c.cfg.TTLDuration()
	if err != nil {
		return opts, err
	}
	opts.CacheTTL = ttl

	if f.formats != "" {
		formats, err := render.ParseFormats(f.formats)
		if err != nil {
			return opts, err
		}
		opts.Formats = formats
	}
	if f.rankdir != "" {
		opts.RankDir = f.rankdir
	}
	if f.fontSize != 0 {
		opts.FontSize = f.fontSize
	}

	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// runOnce executes the pipeline once with a runner that is closed afterwards.
func (c *CLI) runOnce(ctx context.Context, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	return runner.Execute(ctx, opts)
}
