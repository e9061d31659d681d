package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/moradology/pith/internal/config"
	"github.com/moradology/pith/internal/mcp"
	"github.com/moradology/pith/internal/output"
)

var tokensPerFile bool

// tokensCmd represents the tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens [path]",
	Short: "Count tokens in a file or directory",
	Long: `Count tokens in a file, or in every text file under a directory that is
not binary, minified, generated or a lock file.

Examples:
  pith tokens
  pith tokens src --per-file
  pith tokens main.go --encoding o200k --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	tokensCmd.Flags().String("encoding", "cl100k", "Tokenizer: cl100k or o200k")
	tokensCmd.Flags().BoolVar(&tokensPerFile, "per-file", false, "Show per-file counts")
	addWalkFlags(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	root := targetPath(args)
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	return writeTokens(cmd.Context(), os.Stdout, root, cfg, tokensPerFile)
}

func writeTokens(ctx context.Context, w io.Writer, root string, cfg *config.Config, perFile bool) error {
	b, done, err := newBuilder(cfg, nil, false)
	if err != nil {
		return err
	}
	defer done()

	report, err := b.Tokens(ctx, root)
	if err != nil {
		return err
	}

	if cfg.Format() == output.FormatJSON {
		resp := mcp.TokensResponse{Total: report.Total, Encoding: cfg.Encoding().String()}
		if perFile {
			resp.Files = report.Files
		}
		doc, err := output.MarshalJSON(resp)
		if err != nil {
			return fmt.Errorf("failed to marshal token report: %w", err)
		}
		_, err = io.WriteString(w, doc)
		return err
	}

	if perFile {
		paths := make([]string, 0, len(report.Files))
		for path := range report.Files {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fmt.Fprintf(w, "%s: %d tokens\n", path, report.Files[path])
		}
	}
	_, err = fmt.Fprintf(w, "Total: %d tokens\n", report.Total)
	return err
}
