package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaviz/pkg/errors"
)

const defaultDebounce = 150 * time.Millisecond

// watchCommand re-renders a schema whenever it changes on disk.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags    renderFlags
		output   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [schema]",
		Short: "Re-render a schema whenever it changes",
		Long: `Render a schema, then render it again every time the file is saved.

The schema's directory is watched rather than the file itself, so editors
that save by writing a temporary file and renaming it are picked up. Bursts
of events within --debounce are collapsed into one render. Render errors are
reported and watching continues. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(args[0], &flags)
			if err != nil {
				return err
			}
			if output == stdoutPath {
				return errors.New(errors.ErrCodeInvalidInput, "watch cannot write to stdout")
			}

			ctx := cmd.Context()
			rerender := func() {
				if err := c.runRender(ctx, opts, output, flags.noCache); err != nil && ctx.Err() == nil {
					printError("%s", errors.UserMessage(err))
				}
			}

			rerender()
			printInfo("Watching %s", args[0])
			return watchFile(ctx, args[0], debounce, func() {
				c.Logger.Debug("schema changed", "path", args[0])
				rerender()
			}, c.Logger.Warn)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before re-rendering")
	flags.register(cmd)

	return cmd
}

// watchFile calls onChange after path is written, created or renamed into
// place, once no further event has arrived for debounce. It blocks until ctx
// is cancelled and then returns ctx.Err(). Watcher errors go to onError and
// do not stop the loop.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func(), onError func(msg any, keyvals ...any)) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "watch %s", filepath.Dir(target))
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, target) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			onError("watch error", "error", err)

		case <-timer.C:
			onChange()
		}
	}
}

// relevant reports whether ev may have changed the content of target.
func relevant(ev fsnotify.Event, target string) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
