package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moradology/pith/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [path]",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server on stdio so coding assistants can
request trees, codemaps, context documents and token counts.

Tools:
  pith_tree     directory tree with file metadata
  pith_codemap  codemaps with a token summary
  pith_context  tree, codemaps and selected files with a token summary
  pith_tokens   token counts

Relative paths in tool arguments resolve against [path] (default: current
directory). Configuration from <path>/.pith/config.yml supplies defaults.

Example:
  pith mcp ~/src/project`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	root := targetPath(args)
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	server, err := mcp.NewServer(root, cfg, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	fmt.Fprintf(os.Stderr, "Pith MCP Server %s\n", Version)
	return server.Serve(cmd.Context())
}
