package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/moradology/pith/internal/builder"
	"github.com/moradology/pith/internal/config"
	"github.com/moradology/pith/internal/output"
	"github.com/moradology/pith/internal/tree"
)

var treeNoMetadata bool

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Print the file tree of a project",
	Long: `Print the directory tree with language, line count and size for each file.
Directories come first, then files, in case-insensitive name order.
.gitignore files at every level and a root .pithignore are honored.

Examples:
  pith tree
  pith tree src --max-depth 2
  pith tree --no-metadata
  pith tree --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON records")
	treeCmd.Flags().BoolVar(&treeNoMetadata, "no-metadata", false, "Omit language, line count and size")
	addWalkFlags(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	root := targetPath(args)
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	return writeTree(os.Stdout, root, cfg, treeNoMetadata)
}

// writeTree renders the tree of root as text, or as JSON records when the
// configured format is JSON.
func writeTree(w io.Writer, root string, cfg *config.Config, noMetadata bool) error {
	b, err := builder.New(cfg.ToBuilderOptions(), nil)
	if err != nil {
		return err
	}
	t, err := b.Tree(root)
	if err != nil {
		return err
	}

	if cfg.Format() == output.FormatJSON {
		doc, err := output.MarshalJSON(tree.ToRecord(t, nil, nil))
		if err != nil {
			return fmt.Errorf("failed to marshal tree: %w", err)
		}
		_, err = io.WriteString(w, doc)
		return err
	}

	opts := tree.WithMetadata()
	if noMetadata {
		opts = tree.RenderOptions{}
	}
	_, err = io.WriteString(w, tree.Render(t, opts))
	return err
}

// addWalkFlags registers the traversal flags shared by every command that
// walks a tree.
func addWalkFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("include-hidden", false, "Include dot files and directories")
	cmd.Flags().Int("max-depth", 0, "Maximum traversal depth (0 = unlimited)")
	cmd.Flags().Bool("no-gitignore", false, "Do not honor .gitignore files")
}

// addExtractFlags registers the flags shared by codemap and context.
func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output a JSON document")
	cmd.Flags().Bool("include-docs", false, "Attach doc comments and docstrings")
	cmd.Flags().Bool("include-private", false, "Keep non-public declarations, fields and members")
	cmd.Flags().String("encoding", "cl100k", "Tokenizer for the token summary: cl100k or o200k")
	cmd.Flags().StringSlice("lang", nil, "Restrict extraction to these languages (comma separated)")
	cmd.Flags().Int("workers", 0, "Extraction workers (0 = one per CPU)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the document to a file instead of stdout")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show an extraction progress bar on stderr")
	addWalkFlags(cmd)
}
