package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/moradology/pith/internal/config"
	"github.com/moradology/pith/internal/watcher"
)

var (
	contextSelect []string
	contextWatch  bool
)

// contextCmd represents the context command
var contextCmd = &cobra.Command{
	Use:   "context [path]",
	Short: "Build a complete context document",
	Long: `Build a context document with the file tree, codemaps for every supported
file, and the full content of files matching --select. Selection globs match
root-relative paths with '/' as separator: '*' stays within a directory and
'**' crosses directories.

With --watch the document is regenerated whenever files under the path change.

Examples:
  pith context
  pith context --select 'src/**.rs' --select README.md
  pith context --json --encoding o200k
  pith context --watch -o context.xml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	addExtractFlags(contextCmd)
	contextCmd.Flags().StringArrayVarP(&contextSelect, "select", "s", nil, "Include files matching this glob in full (repeatable)")
	contextCmd.Flags().BoolVarP(&contextWatch, "watch", "w", false, "Regenerate the document when files change")
}

func runContext(cmd *cobra.Command, args []string) error {
	root := targetPath(args)
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}

	render := func() error {
		return withOutput(outputFile, func(w io.Writer) error {
			return writeContext(cmd.Context(), w, root, cfg, contextSelect, showProgress)
		})
	}
	if err := render(); err != nil {
		return err
	}
	if !contextWatch {
		return nil
	}
	return watchContext(cmd.Context(), root, cfg, outputFile, 0, render)
}

func writeContext(ctx context.Context, w io.Writer, root string, cfg *config.Config, selects []string, progress bool) error {
	b, done, err := newBuilder(cfg, selects, progress)
	if err != nil {
		return err
	}
	defer done()

	res, err := b.ContextDocument(ctx, root, cfg.Format())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, res.Document)
	return err
}

// watchContext calls render after every debounced batch of changes under
// root until ctx is cancelled. Changes to outputPath itself are ignored.
// Render failures are reported and watching continues.
func watchContext(ctx context.Context, root string, cfg *config.Config, outputPath string, debounce time.Duration, render func() error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	dir := root
	if !info.IsDir() {
		dir = filepath.Dir(root)
	}

	var ignore string
	if outputPath != "" {
		if abs, err := filepath.Abs(outputPath); err == nil {
			ignore = abs
		}
	}

	w, err := watcher.New(dir, watcher.Options{
		Debounce:      debounce,
		IncludeHidden: cfg.Walk.IncludeHidden,
		Filter: func(path string) bool {
			abs, err := filepath.Abs(path)
			return err != nil || abs != ignore
		},
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer w.Stop()

	fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl+C to stop)...\n", dir)
	if err := w.Start(ctx, func(files []string) {
		if verbose {
			log.Printf("%d file(s) changed, regenerating", len(files))
		}
		if err := render(); err != nil {
			writeError(os.Stderr, err, jsonOutput)
		}
	}); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	return nil
}
