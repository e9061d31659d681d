package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moradology/pith/internal/filter"
)

const (
	branch     = "├── "
	lastBranch = "└── "
	vertical   = "│   "
	space      = "    "
)

// RenderOptions controls which metadata and markers are rendered.
type RenderOptions struct {
	ShowSize     bool
	ShowLines    bool
	ShowLanguage bool
	Selected     map[string]bool // paths marked with *
	HasCodemap   map[string]bool // paths marked with +
}

// WithMetadata returns options that show size, lines and language.
func WithMetadata() RenderOptions {
	return RenderOptions{ShowSize: true, ShowLines: true, ShowLanguage: true}
}

// Render draws the tree rooted at root.
func Render(root *Node, opts RenderOptions) string {
	var sb strings.Builder
	sb.Grow(4096)
	renderNode(&sb, root, "", true, true, opts)
	return sb.String()
}

func renderNode(sb *strings.Builder, n *Node, prefix string, last, isRoot bool, opts RenderOptions) {
	sb.WriteString(prefix)
	switch {
	case isRoot:
	case last:
		sb.WriteString(lastBranch)
	default:
		sb.WriteString(branch)
	}
	sb.WriteString(n.Name)

	if n.IsDir() {
		sb.WriteByte('/')
	} else if meta := fileMetadata(n, opts); len(meta) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(meta, ", "))
		sb.WriteByte(']')
	}

	selected := opts.Selected[n.Path]
	mapped := opts.HasCodemap[n.Path]
	if selected || mapped {
		sb.WriteByte(' ')
		if selected {
			sb.WriteByte('*')
		}
		if mapped {
			sb.WriteByte('+')
		}
	}
	sb.WriteByte('\n')

	childPrefix := ""
	if !isRoot {
		if last {
			childPrefix = prefix + space
		} else {
			childPrefix = prefix + vertical
		}
	}
	for i, c := range n.children {
		renderNode(sb, c, childPrefix, i == len(n.children)-1, false, opts)
	}
}

func fileMetadata(n *Node, opts RenderOptions) []string {
	var meta []string
	if opts.ShowLanguage && n.Extension != "" {
		if lang, ok := filter.FromExtension(n.Extension); ok {
			meta = append(meta, lang.String())
		}
	}
	if opts.ShowLines && n.Lines >= 0 {
		meta = append(meta, fmt.Sprintf("%d lines", n.Lines))
	}
	if opts.ShowSize {
		meta = append(meta, FormatSize(n.Size))
	}
	return meta
}

// FormatSize renders a byte count as B, KB or MB with one decimal.
func FormatSize(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case bytes < kb:
		return fmt.Sprintf("%dB", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.1fKB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%.1fMB", float64(bytes)/mb)
	}
}

// FormatNumber adds thousands separators: 1234567 -> "1,234,567".
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	head := len(s) % 3
	if head > 0 {
		sb.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if sb.Len() > 0 && !(neg && sb.Len() == 1) {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}
