// Package output assembles the final context document: file tree, codemaps,
// selected file contents and a token summary whose total matches the
// tokenized document it is part of.
package output

import (
	"fmt"
	"strings"
)

// Format selects the document shape.
type Format int

const (
	// FormatXML is tagged sections with markdown content.
	FormatXML Format = iota
	// FormatJSON is a single pretty-printed JSON object.
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "xml"
}

// ParseFormat accepts "xml" and "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatXML, fmt.Errorf("unknown output format: %s", s)
}

// Options controls which sections are emitted.
type Options struct {
	Format          Format
	IncludeTree     bool
	IncludeCodemaps bool
	IncludeSelected bool
	IncludeSummary  bool
	// PublicOnly hides non-public declarations, fields and members.
	PublicOnly bool
}

// DefaultOptions emits tree, codemaps and summary.
func DefaultOptions() Options {
	return Options{
		IncludeTree:     true,
		IncludeCodemaps: true,
		IncludeSummary:  true,
		PublicOnly:      true,
	}
}

// ContextOptions adds selected file contents to the defaults.
func ContextOptions() Options {
	o := DefaultOptions()
	o.IncludeSelected = true
	return o
}

// CodemapOptions emits codemaps and summary only.
func CodemapOptions() Options {
	o := DefaultOptions()
	o.IncludeTree = false
	return o
}

// TreeOptions emits the tree only.
func TreeOptions() Options {
	return Options{IncludeTree: true, PublicOnly: true}
}
