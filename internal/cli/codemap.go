package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/moradology/pith/internal/config"
)

var (
	outputFile   string
	showProgress bool
)

// codemapCmd represents the codemap command
var codemapCmd = &cobra.Command{
	Use:   "codemap [path]",
	Short: "Extract structural codemaps",
	Long: `Extract a codemap for every supported source file: imports, function
signatures, types, fields and members, with line ranges. Only public
declarations are shown unless --include-private is set. The document ends with
a token summary whose total matches the document.

Examples:
  pith codemap
  pith codemap src --lang rust,go
  pith codemap --include-private --include-docs --encoding o200k
  pith codemap --json -o codemap.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCodemap,
}

func init() {
	rootCmd.AddCommand(codemapCmd)
	addExtractFlags(codemapCmd)
}

func runCodemap(cmd *cobra.Command, args []string) error {
	root := targetPath(args)
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	return withOutput(outputFile, func(w io.Writer) error {
		return writeCodemap(cmd.Context(), w, root, cfg, showProgress)
	})
}

func writeCodemap(ctx context.Context, w io.Writer, root string, cfg *config.Config, progress bool) error {
	b, done, err := newBuilder(cfg, nil, progress)
	if err != nil {
		return err
	}
	defer done()

	res, err := b.CodemapDocument(ctx, root, cfg.Format())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, res.Document)
	return err
}

// withOutput runs write against stdout, or against path when set.
func withOutput(path string, write func(w io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
