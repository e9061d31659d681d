package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool

	// jsonErrors is set once configuration resolves to the JSON format.
	jsonErrors bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pith",
	Short: "Pith - token-exact codemaps and context documents for LLMs",
	Long: `Pith walks a source tree and produces compact, structured context for
language models: a file tree, per-file codemaps (imports, signatures, types,
fields) and the full text of selected files, followed by a token summary whose
total matches the document it is part of.

Supported languages: Rust, TypeScript/TSX, JavaScript/JSX, Python, Go, Java, C.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Commands observe Ctrl+C through cmd.Context().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		writeError(os.Stderr, err, errorsAsJSON())
		os.Exit(ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <path>/.pith/config.yml, then ~/.pith/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// errorsAsJSON reports whether errors should be written as JSON: either
// --json was given or the resolved configuration selects the JSON format.
func errorsAsJSON() bool {
	return jsonOutput || jsonErrors
}

// targetPath returns the positional path argument, defaulting to ".".
func targetPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
