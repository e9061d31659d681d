package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DirName is the per-project and per-user configuration directory.
const DirName = ".pith"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load resolves defaults, config file, environment and bound flags, in
	// that order, and validates the result.
	Load() (*Config, error)
}

// LoaderOption customizes a loader.
type LoaderOption func(*loader)

// WithConfigFile reads exactly this file instead of searching for one. A
// missing explicit file is an error.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

// WithFlag binds a command-line flag to a config key such as
// "output.encoding". The flag wins only when it was set explicitly.
func WithFlag(key string, flag *pflag.Flag) LoaderOption {
	return func(l *loader) {
		if flag != nil {
			l.flags[key] = flag
		}
	}
}

type loader struct {
	rootDir    string
	configFile string
	flags      map[string]*pflag.Flag
}

// NewLoader creates a loader for the project rooted at rootDir.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir, flags: make(map[string]*pflag.Flag)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Flags bound with WithFlag, when set
// 2. Environment variables (PITH_*)
// 3. Config file
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(projectDir(l.rootDir), DirName))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, DirName))
		}
	}

	v.SetEnvPrefix("PITH")
	v.AutomaticEnv()
	// PITH_OUTPUT_ENCODING -> output.encoding
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnv(v)

	for key, flag := range l.flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// projectDir maps a file root to its directory.
func projectDir(root string) string {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return filepath.Dir(root)
	}
	return root
}

var configKeys = []string{
	"output.format",
	"output.encoding",
	"output.include_docs",
	"output.include_private",
	"walk.include_hidden",
	"walk.max_depth",
	"walk.respect_gitignore",
	"walk.ignore",
	"extract.workers",
	"extract.languages",
	"extract.mmap_threshold",
	"tokens.cache_size",
}

// bindEnv makes every key visible to Unmarshal even when only the
// environment sets it.
func bindEnv(v *viper.Viper) {
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.encoding", defaults.Output.Encoding)
	v.SetDefault("output.include_docs", defaults.Output.IncludeDocs)
	v.SetDefault("output.include_private", defaults.Output.IncludePrivate)

	v.SetDefault("walk.include_hidden", defaults.Walk.IncludeHidden)
	v.SetDefault("walk.max_depth", defaults.Walk.MaxDepth)
	v.SetDefault("walk.respect_gitignore", defaults.Walk.RespectGitignore)
	v.SetDefault("walk.ignore", defaults.Walk.Ignore)

	v.SetDefault("extract.workers", defaults.Extract.Workers)
	v.SetDefault("extract.languages", defaults.Extract.Languages)
	v.SetDefault("extract.mmap_threshold", defaults.Extract.MmapThreshold)

	v.SetDefault("tokens.cache_size", defaults.Tokens.CacheSize)
}

// LoadFromDir loads configuration for rootDir without flag bindings.
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
