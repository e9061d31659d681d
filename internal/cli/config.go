package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/moradology/pith/internal/builder"
	"github.com/moradology/pith/internal/config"
	"github.com/moradology/pith/internal/tokens"
)

// flagKeys maps command-line flags onto config keys. Flags a command does
// not define are skipped.
var flagKeys = map[string]string{
	"encoding":        "output.encoding",
	"include-docs":    "output.include_docs",
	"include-private": "output.include_private",
	"include-hidden":  "walk.include_hidden",
	"max-depth":       "walk.max_depth",
	"lang":            "extract.languages",
	"workers":         "extract.workers",
}

// loadConfig resolves configuration for root with cmd's flags on top.
// --no-gitignore and --json have no config key and are applied last.
func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	for name, key := range flagKeys {
		opts = append(opts, config.WithFlag(key, cmd.Flags().Lookup(name)))
	}

	cfg, err := config.NewLoader(root, opts...).Load()
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("no-gitignore"); f != nil && f.Changed {
		cfg.Walk.RespectGitignore = false
	}
	if jsonOutput {
		cfg.Output.Format = "json"
	}
	jsonErrors = cfg.Output.Format == "json"
	return cfg, nil
}

// newBuilder creates a builder and its token counter. The returned func
// releases the counter's cache.
func newBuilder(cfg *config.Config, selects []string, progress bool) (*builder.Builder, func(), error) {
	counter, err := tokens.NewCachedCounter(cfg.Encoding(), cfg.Tokens.CacheSize)
	if err != nil {
		return nil, nil, err
	}

	opts := cfg.ToBuilderOptions()
	opts.Select = selects
	opts.Verbose = verbose
	if progress {
		opts.Progress = NewProgressReporter(os.Stderr)
	}

	b, err := builder.New(opts, counter)
	if err != nil {
		counter.Close()
		return nil, nil, err
	}
	return b, counter.Close, nil
}
