package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaviz/pkg/errors"
	"github.com/matzehuels/schemaviz/pkg/pipeline"
	"github.com/matzehuels/schemaviz/pkg/render"
)

// stdoutPath makes -o write the single artifact to standard output.
const stdoutPath = "-"

// renderCommand creates the render command for producing class diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  renderFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render [schema]",
		Short: "Render a schema as a class diagram",
		Long: `Render a schema as a class diagram.

Every record becomes a box listing its fields; every field whose type names
another record gets an arrow to it. Decorations such as *, ?, [] and ! are
ignored when matching type names.

Output files are written next to the schema as <name>.<format> unless -o is
given. PNG and PDF output need rsvg-convert (librsvg) on the PATH.

Rendered artifacts are cached; use --refresh to re-render or --no-cache to
bypass the cache entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(args[0], &flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple formats) or - for stdout")
	flags.register(cmd)

	return cmd
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	formats, err := dropUnavailable(opts.Formats)
	if err != nil {
		return err
	}
	opts.Formats = formats
	if output == stdoutPath && len(formats) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "-o - needs exactly one format, got %d", len(formats))
	}

	prog := newProgress(c.Logger)
	result, err := c.runOnce(ctx, opts, noCache)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == stdoutPath {
		return writeFile(stdoutPath, result.Artifacts[formats[0]])
	}

	paths, err := writeArtifacts(result.Artifacts, formats, output, opts.Input)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", countOf(len(paths), "artifact")))

	printSuccess("Rendered %s", opts.Input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Records, result.Stats.References, result.CacheInfo.RenderHit)
	return nil
}

// dropUnavailable removes formats that need rsvg-convert when it is not
// installed. It fails only when nothing would be left to render.
func dropUnavailable(formats []string) ([]string, error) {
	if render.ConverterAvailable() {
		return formats, nil
	}
	kept := slices.DeleteFunc(slices.Clone(formats), func(f string) bool {
		if render.NeedsConverter(f) {
			printWarning("Skipping %s: rsvg-convert not found (install librsvg)", f)
			return true
		}
		return false
	})
	if len(kept) == 0 {
		return nil, errors.New(errors.ErrCodeRender, "no renderable formats: rsvg-convert is required for %v", formats)
	}
	return kept, nil
}

// outputPaths maps each format to the file it is written to. A single format
// with an explicit output goes exactly there.
func outputPaths(formats []string, output, input string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// writeArtifacts writes artifacts in format order and returns the paths.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	paths := outputPaths(formats, output, input)
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		path := paths[f]
		if err := writeFile(path, artifacts[f]); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, or stdout for "" and "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == stdoutPath {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
