package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemaviz/pkg/cache"
	"github.com/matzehuels/schemaviz/pkg/compiler"
	"github.com/matzehuels/schemaviz/pkg/observability"
	"github.com/matzehuels/schemaviz/pkg/schema"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, keyer and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads opts.Input and runs the rest of the pipeline on it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()

	hooks.OnLoadStart(ctx, opts.Input)
	loadStart := time.Now()
	s, err := Load(opts)
	loadTime := time.Since(loadStart)
	records := 0
	if s != nil {
		records = s.Len()
	}
	hooks.OnLoadComplete(ctx, opts.Input, records, loadTime, err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	opts.Logger.Debug("loaded schema",
		"input", opts.Input,
		"records", records,
		"duration", loadTime)

	result, err := r.Run(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Run compiles and renders an in-memory schema with caching.
func (r *Runner) Run(ctx context.Context, s *schema.Schema, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	hooks := observability.Pipeline()
	result := &Result{}

	// Stage 1: Compile
	compileStart := time.Now()
	g, err := Compile(s, opts)
	result.Stats.CompileTime = time.Since(compileStart)
	if err != nil {
		hooks.OnCompileComplete(ctx, 0, 0, result.Stats.CompileTime, err)
		return nil, fmt.Errorf("compile: %w", err)
	}
	hooks.OnCompileComplete(ctx, g.NodeCount(), g.EdgeCount(), result.Stats.CompileTime, nil)

	result.Graph = g
	result.SchemaHash = HashSchema(s)
	result.Stats.Records = g.NodeCount()
	result.Stats.References = g.EdgeCount()

	opts.Logger.Info("compiled schema",
		"records", g.NodeCount(),
		"references", g.EdgeCount(),
		"duration", result.Stats.CompileTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Render
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, result.SchemaHash, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderWithCacheInfo renders the requested formats, serving each from the
// cache when possible, and reports whether every format was a cache hit.
// Only the missing formats are rendered and written back.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *compiler.Graph, schemaHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if opts.Refresh {
			missing = append(missing, format)
			continue
		}
		key := r.Keyer.ArtifactKey(schemaHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			opts.Logger.Warn("cache read failed", "format", format, "error", err)
		}
		if err == nil && hit {
			hooks.OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		hooks.OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(g, renderOpts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(schemaHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}

	return artifacts, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// HashSchema returns the content hash of a schema. It covers record and
// field order, so reordering a schema changes the hash.
func HashSchema(s *schema.Schema) string {
	data, _ := json.Marshal(s)
	return cache.Hash(data)
}
