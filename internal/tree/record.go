package tree

import "github.com/moradology/pith/internal/filter"

// Record is the JSON shape of a node.
type Record struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Kind       string    `json:"kind"`
	Extension  string    `json:"extension,omitempty"`
	Size       *int64    `json:"size,omitempty"`
	Lines      *int      `json:"lines,omitempty"`
	Language   string    `json:"language,omitempty"`
	Selected   bool      `json:"selected,omitempty"`
	HasCodemap bool      `json:"has_codemap,omitempty"`
	Children   []*Record `json:"children,omitempty"`
}

// ToRecord converts the subtree into records. The marker sets may be nil.
func ToRecord(n *Node, selected, hasCodemap map[string]bool) *Record {
	r := &Record{
		Name:       n.Name,
		Path:       n.Path,
		Kind:       n.Kind.String(),
		Selected:   selected[n.Path],
		HasCodemap: hasCodemap[n.Path],
	}
	if n.Kind == File {
		size := n.Size
		r.Size = &size
		r.Extension = n.Extension
		if n.Lines >= 0 {
			lines := n.Lines
			r.Lines = &lines
		}
		if lang, ok := filter.FromExtension(n.Extension); ok && n.Extension != "" {
			r.Language = lang.String()
		}
	}
	for _, c := range n.children {
		r.Children = append(r.Children, ToRecord(c, selected, hasCodemap))
	}
	return r
}
