// Package tree models a directory listing and renders it with box-drawing
// characters.
package tree

import (
	"sort"
	"strings"
)

// Kind distinguishes directories from files.
type Kind int

const (
	Directory Kind = iota
	File
)

func (k Kind) String() string {
	if k == File {
		return "file"
	}
	return "directory"
}

// Node is a file or directory in the tree.
type Node struct {
	Name string // base name
	Path string // path as produced by the walker
	Kind Kind

	// File metadata; zero for directories.
	Extension string // lowercase, without dot
	Size      int64
	Lines     int // -1 when unknown

	children []*Node
}

// NewDirectory creates a directory node.
func NewDirectory(name, path string) *Node {
	return &Node{Name: name, Path: path, Kind: Directory, Lines: -1}
}

// NewFile creates a file node. Pass lines < 0 when the line count is unknown.
func NewFile(name, path, extension string, size int64, lines int) *Node {
	return &Node{
		Name:      name,
		Path:      path,
		Kind:      File,
		Extension: strings.ToLower(extension),
		Size:      size,
		Lines:     lines,
	}
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == Directory
}

// AddChild appends a child. Only meaningful for directories.
func (n *Node) AddChild(child *Node) {
	n.children = append(n.children, child)
}

// Children returns the node's children.
func (n *Node) Children() []*Node {
	return n.children
}

// SortChildren orders children recursively: directories first, then by
// case-insensitive name.
func (n *Node) SortChildren() {
	sort.SliceStable(n.children, func(i, j int) bool {
		a, b := n.children[i], n.children[j]
		if a.Kind != b.Kind {
			return a.Kind == Directory
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, c := range n.children {
		c.SortChildren()
	}
}

// FileCount counts files in the subtree.
func (n *Node) FileCount() int {
	if n.Kind == File {
		return 1
	}
	total := 0
	for _, c := range n.children {
		total += c.FileCount()
	}
	return total
}

// DirectoryCount counts directories in the subtree, including n.
func (n *Node) DirectoryCount() int {
	if n.Kind == File {
		return 0
	}
	total := 1
	for _, c := range n.children {
		total += c.DirectoryCount()
	}
	return total
}
