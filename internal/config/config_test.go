package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moradology/pith/internal/codemap"
	"github.com/moradology/pith/internal/filter"
	"github.com/moradology/pith/internal/output"
	"github.com/moradology/pith/internal/tokens"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load uses defaults when no config file exists
// - Load reads .pith/config.yml and .pith/config.yaml and merges with defaults
// - An explicit config file is read, and a missing explicit file is an error
// - Environment variables override the config file
// - Bound flags override env and file only when set
// - Malformed YAML and invalid values are load errors
// - Validate rejects each invalid field with its sentinel error
// - Validate reports every invalid field at once
// - Accessors and ToBuilderOptions convert parsed values

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, DirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "xml", cfg.Output.Format)
	assert.Equal(t, "cl100k", cfg.Output.Encoding)
	assert.False(t, cfg.Output.IncludeDocs)
	assert.False(t, cfg.Output.IncludePrivate)
	assert.True(t, cfg.Walk.RespectGitignore)
	assert.Zero(t, cfg.Walk.MaxDepth)
	assert.Zero(t, cfg.Extract.Workers)
	assert.Equal(t, codemap.DefaultMmapThreshold, cfg.Extract.MmapThreshold)
	assert.Equal(t, 10_000, cfg.Tokens.CacheSize)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.Output, cfg.Output)
	assert.Equal(t, defaults.Walk.RespectGitignore, cfg.Walk.RespectGitignore)
	assert.Empty(t, cfg.Walk.Ignore)
	assert.Empty(t, cfg.Extract.Languages)
	assert.Equal(t, defaults.Extract.MmapThreshold, cfg.Extract.MmapThreshold)
	assert.Equal(t, defaults.Tokens, cfg.Tokens)
}

func TestLoad_ReadsConfigYml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", `
output:
  format: json
  encoding: o200k
  include_docs: true
walk:
  max_depth: 3
  ignore:
    - "*.gen.go"
extract:
  languages: [rust, go]
`)

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "o200k", cfg.Output.Encoding)
	assert.True(t, cfg.Output.IncludeDocs)
	assert.Equal(t, 3, cfg.Walk.MaxDepth)
	assert.Equal(t, []string{"*.gen.go"}, cfg.Walk.Ignore)
	assert.Equal(t, []string{"rust", "go"}, cfg.Extract.Languages)

	// untouched keys keep their defaults
	assert.True(t, cfg.Walk.RespectGitignore)
	assert.Equal(t, 10_000, cfg.Tokens.CacheSize)
}

func TestLoad_ReadsConfigYaml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yaml", "tokens:\n  cache_size: 0\n")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Tokens.CacheSize)
}

func TestLoad_FileRootUsesParentDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", "output:\n  format: json\n")
	file := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0o644))

	cfg, err := NewLoader(file).Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extract:\n  workers: 3\n"), 0o644))

	cfg, err := NewLoader(t.TempDir(), WithConfigFile(path)).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Extract.Workers)

	_, err = NewLoader(t.TempDir(), WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvironmentOverridesConfigFile(t *testing.T) {
	// t.Setenv forbids t.Parallel
	root := t.TempDir()
	writeConfig(t, root, "config.yml", "output:\n  encoding: cl100k\nextract:\n  workers: 2\n")

	t.Setenv("PITH_OUTPUT_ENCODING", "o200k")
	t.Setenv("PITH_EXTRACT_WORKERS", "7")
	t.Setenv("PITH_EXTRACT_LANGUAGES", "python,typescript")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, "o200k", cfg.Output.Encoding)
	assert.Equal(t, 7, cfg.Extract.Workers)
	assert.Equal(t, []string{"python", "typescript"}, cfg.Extract.Languages)
}

func TestLoad_FlagsOverrideWhenSet(t *testing.T) {
	t.Setenv("PITH_OUTPUT_FORMAT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("encoding", "cl100k", "")
	flags.Bool("json", false, "")
	flags.Int("max-depth", 0, "")
	require.NoError(t, flags.Parse([]string{"--encoding", "o200k", "--max-depth", "2"}))

	cfg, err := NewLoader(t.TempDir(),
		WithFlag("output.encoding", flags.Lookup("encoding")),
		WithFlag("walk.max_depth", flags.Lookup("max-depth")),
		WithFlag("output.include_docs", flags.Lookup("missing")),
	).Load()
	require.NoError(t, err)

	assert.Equal(t, "o200k", cfg.Output.Encoding)
	assert.Equal(t, 2, cfg.Walk.MaxDepth)
	assert.Equal(t, "json", cfg.Output.Format, "unbound keys still come from env")
}

func TestLoad_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", "output:\n  format: [unclosed\n")

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeConfig(t, root, "config.yml", "output:\n  encoding: p50k\n")

	_, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"format", func(c *Config) { c.Output.Format = "yaml" }, ErrInvalidFormat},
		{"encoding", func(c *Config) { c.Output.Encoding = "gpt2" }, ErrInvalidEncoding},
		{"depth", func(c *Config) { c.Walk.MaxDepth = -1 }, ErrInvalidDepth},
		{"workers", func(c *Config) { c.Extract.Workers = -2 }, ErrInvalidWorkers},
		{"threshold", func(c *Config) { c.Extract.MmapThreshold = 0 }, ErrInvalidThreshold},
		{"language", func(c *Config) { c.Extract.Languages = []string{"rust", "cobol"} }, ErrInvalidLanguage},
		{"cache", func(c *Config) { c.Tokens.CacheSize = -1 }, ErrInvalidCacheSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_ReportsMultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Output.Format = "yaml"
	cfg.Output.Encoding = "gpt2"
	cfg.Extract.Workers = -1

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
}

func TestAccessors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Output.Format = "json"
	cfg.Output.Encoding = "o200k_base"
	cfg.Output.IncludePrivate = true
	cfg.Walk.IncludeHidden = true
	cfg.Walk.Ignore = []string{"vendor/"}
	cfg.Extract.Languages = []string{"go", "ts"}
	require.NoError(t, Validate(cfg))

	assert.Equal(t, output.FormatJSON, cfg.Format())
	assert.Equal(t, tokens.O200kBase, cfg.Encoding())
	assert.Equal(t, []filter.Language{filter.Go, filter.TypeScript}, cfg.Languages())

	opts := cfg.ToBuilderOptions()
	assert.True(t, opts.Walk.IncludeHidden)
	assert.True(t, opts.Walk.RespectGitignore)
	assert.Equal(t, []string{"vendor/"}, opts.Walk.IgnorePatterns)
	assert.True(t, opts.Extract.IncludePrivate)
	assert.Equal(t, runtime.NumCPU(), opts.Workers)
	assert.Equal(t, codemap.DefaultMmapThreshold, opts.MmapThreshold)

	cfg.Extract.Workers = 3
	assert.Equal(t, 3, cfg.ToBuilderOptions().Workers)
}
