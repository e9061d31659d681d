package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moradology/pith/internal/filter"
	"github.com/moradology/pith/internal/output"
	"github.com/moradology/pith/internal/tokens"
)

var (
	// ErrInvalidFormat indicates an unsupported output format
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidEncoding indicates an unsupported token encoding
	ErrInvalidEncoding = errors.New("invalid token encoding")

	// ErrInvalidLanguage indicates an unknown language in the filter
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrInvalidDepth indicates a negative max depth
	ErrInvalidDepth = errors.New("invalid max depth")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidThreshold indicates a non-positive mmap threshold
	ErrInvalidThreshold = errors.New("invalid mmap threshold")

	// ErrInvalidCacheSize indicates a negative token cache size
	ErrInvalidCacheSize = errors.New("invalid token cache size")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}
	if cfg.Walk.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("%w: max_depth cannot be negative, got %d", ErrInvalidDepth, cfg.Walk.MaxDepth))
	}
	if err := validateExtract(&cfg.Extract); err != nil {
		errs = append(errs, err)
	}
	if cfg.Tokens.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.Tokens.CacheSize))
	}

	return joinErrors(errs)
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if _, err := output.ParseFormat(cfg.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be 'xml' or 'json', got '%s'", ErrInvalidFormat, cfg.Format))
	}
	if _, err := tokens.ParseEncoding(cfg.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be 'cl100k' or 'o200k', got '%s'", ErrInvalidEncoding, cfg.Encoding))
	}

	return joinErrors(errs)
}

func validateExtract(cfg *ExtractConfig) error {
	var errs []error

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}
	if cfg.MmapThreshold <= 0 {
		errs = append(errs, fmt.Errorf("%w: mmap_threshold must be positive, got %d", ErrInvalidThreshold, cfg.MmapThreshold))
	}
	for _, name := range cfg.Languages {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, err := filter.ParseLanguage(name); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidLanguage, name))
		}
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into a single error with clear
// formatting. Each sentinel stays reachable through errors.Is.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return &validationError{msg: "validation failed:\n  - " + strings.Join(msgs, "\n  - "), errs: errs}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
