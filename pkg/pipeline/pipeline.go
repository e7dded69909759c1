// Package pipeline provides the load → compile → render pipeline for schemaviz.
//
// The CLI and the HTTP API both run schemas through a [Runner], so both get
// the same defaults, validation, caching and observability events.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a schema file with the loader matching its format
//  2. Compile: Build the class-diagram graph, optionally focused on one record
//  3. Render: Produce DOT, SVG, PNG, PDF or JSON artifacts
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "zig-out/visual.yml",
//	    Formats: []string{"svg", "dot"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Callers that already hold a schema skip the load stage with [Runner.Run].
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemaviz/pkg/cache"
	"github.com/matzehuels/schemaviz/pkg/compiler"
	"github.com/matzehuels/schemaviz/pkg/errors"
	"github.com/matzehuels/schemaviz/pkg/render"
	"github.com/matzehuels/schemaviz/pkg/render/dot"
)

const (
	// DefaultFontSize is the Graphviz font size for graph, nodes and edges.
	DefaultFontSize = dot.DefaultFontSize

	// DefaultCacheTTL is how long rendered artifacts stay cached.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultPNGScale is the rsvg-convert zoom used for PNG output.
	DefaultPNGScale = 2.0
)

// DefaultFormats is used when no format is requested.
var DefaultFormats = []string{render.FormatSVG}

// RankDirs lists the accepted Graphviz layout directions.
var RankDirs = []string{"TB", "LR", "BT", "RL"}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Input     string `json:"input,omitempty"`      // Schema file path (Execute only)
	InputType string `json:"input_type,omitempty"` // Loader type; empty detects from the extension

	// Compile options
	Focus string `json:"focus,omitempty"` // Record to focus on; empty keeps the whole graph
	Depth int    `json:"depth,omitempty"` // Focus hops; <= 0 is unlimited

	// Render options
	Formats  []string `json:"formats,omitempty"`
	RankDir  string   `json:"rankdir,omitempty"`
	FontSize int      `json:"fontsize,omitempty"`

	// Cache options
	CacheTTL time.Duration `json:"-"`
	Refresh  bool          `json:"refresh,omitempty"` // Ignore cached artifacts and overwrite them

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the compiled (and possibly focused) graph.
	Graph *compiler.Graph

	// SchemaHash is the content hash of the schema, used in cache keys.
	SchemaHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records     int
	References  int
	LoadTime    time.Duration
	CompileTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether every artifact came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !render.ValidFormat(format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(render.Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRankDir checks a Graphviz layout direction. Empty is accepted and
// leaves the Graphviz default.
func ValidateRankDir(rankdir string) error {
	if rankdir == "" {
		return nil
	}
	for _, d := range RankDirs {
		if strings.EqualFold(rankdir, d) {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid rankdir: %q (must be one of: %s)",
		rankdir, strings.Join(RankDirs, ", "))
}

// SetDefaults fills unset options. It is idempotent.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = append([]string(nil), DefaultFormats...)
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	o.RankDir = strings.ToUpper(o.RankDir)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks render options. Input is checked by [Runner.Execute].
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateRankDir(o.RankDir); err != nil {
		return err
	}
	if o.FontSize < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "fontsize must be positive, got %d", o.FontSize)
	}
	return nil
}

// DOTOptions returns the DOT adapter options.
func (o *Options) DOTOptions() dot.Options {
	return dot.Options{RankDir: o.RankDir, FontSize: o.FontSize}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Depth only counts when a focus record is set.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:   format,
		RankDir:  o.RankDir,
		FontSize: o.FontSize,
		Focus:    o.Focus,
	}
	if o.Focus != "" && o.Depth > 0 {
		k.Depth = o.Depth
	}
	return k
}
