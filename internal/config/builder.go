package config

import (
	"github.com/moradology/pith/internal/builder"
	"github.com/moradology/pith/internal/codemap"
)

// ToBuilderOptions converts a Config into builder options. Selection globs,
// progress and verbosity are run-specific and set by the caller.
func (c *Config) ToBuilderOptions() builder.Options {
	opts := builder.DefaultOptions()
	opts.Walk = c.WalkOptions()
	opts.Extract = c.ExtractOptions()
	opts.Languages = c.Languages()
	if c.Extract.Workers > 0 {
		opts.Workers = c.Extract.Workers
	}
	opts.MmapThreshold = c.Extract.MmapThreshold
	if opts.MmapThreshold <= 0 {
		opts.MmapThreshold = codemap.DefaultMmapThreshold
	}
	return opts
}
