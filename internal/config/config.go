// Package config loads pith configuration.
//
// Sources, lowest to highest priority:
//  1. Built-in defaults
//  2. Config file: --config, else <root>/.pith/config.yml, else ~/.pith/config.yml
//  3. Environment variables (PITH_OUTPUT_ENCODING, PITH_EXTRACT_WORKERS, ...)
//  4. Command-line flags bound through the loader
package config

import (
	"github.com/moradology/pith/internal/codemap"
	"github.com/moradology/pith/internal/filter"
	"github.com/moradology/pith/internal/output"
	"github.com/moradology/pith/internal/tokens"
	"github.com/moradology/pith/internal/walker"
)

// Config is the complete pith configuration.
type Config struct {
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Walk    WalkConfig    `yaml:"walk" mapstructure:"walk"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Tokens  TokensConfig  `yaml:"tokens" mapstructure:"tokens"`
}

// OutputConfig controls document rendering.
type OutputConfig struct {
	Format         string `yaml:"format" mapstructure:"format"`     // "xml" or "json"
	Encoding       string `yaml:"encoding" mapstructure:"encoding"` // "cl100k" or "o200k"
	IncludeDocs    bool   `yaml:"include_docs" mapstructure:"include_docs"`
	IncludePrivate bool   `yaml:"include_private" mapstructure:"include_private"`
}

// WalkConfig controls traversal.
type WalkConfig struct {
	IncludeHidden    bool     `yaml:"include_hidden" mapstructure:"include_hidden"`
	MaxDepth         int      `yaml:"max_depth" mapstructure:"max_depth"` // 0 = unlimited
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"`
	Ignore           []string `yaml:"ignore" mapstructure:"ignore"` // gitignore-style patterns
}

// ExtractConfig controls codemap extraction.
type ExtractConfig struct {
	Workers       int      `yaml:"workers" mapstructure:"workers"`     // 0 = one per CPU
	Languages     []string `yaml:"languages" mapstructure:"languages"` // empty = all
	MmapThreshold int64    `yaml:"mmap_threshold" mapstructure:"mmap_threshold"`
}

// TokensConfig controls token counting.
type TokensConfig struct {
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"` // 0 disables memoization
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format:   "xml",
			Encoding: "cl100k",
		},
		Walk: WalkConfig{
			RespectGitignore: true,
		},
		Extract: ExtractConfig{
			MmapThreshold: codemap.DefaultMmapThreshold,
		},
		Tokens: TokensConfig{
			CacheSize: 10_000,
		},
	}
}

// Format returns the parsed output format. Call after Validate.
func (c *Config) Format() output.Format {
	f, _ := output.ParseFormat(c.Output.Format)
	return f
}

// Encoding returns the parsed token encoding. Call after Validate.
func (c *Config) Encoding() tokens.Encoding {
	e, _ := tokens.ParseEncoding(c.Output.Encoding)
	return e
}

// Languages returns the parsed language filter. Call after Validate.
func (c *Config) Languages() []filter.Language {
	langs, _ := filter.ParseLanguages(c.Extract.Languages)
	return langs
}

// WalkOptions converts the walk section.
func (c *Config) WalkOptions() walker.Options {
	return walker.Options{
		MaxDepth:         c.Walk.MaxDepth,
		IncludeHidden:    c.Walk.IncludeHidden,
		RespectGitignore: c.Walk.RespectGitignore,
		IgnorePatterns:   c.Walk.Ignore,
	}
}

// ExtractOptions converts the extraction switches.
func (c *Config) ExtractOptions() codemap.Options {
	return codemap.Options{
		IncludeDocs:    c.Output.IncludeDocs,
		IncludePrivate: c.Output.IncludePrivate,
	}
}
