package walker

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/moradology/pith/internal/tree"
)

// BuildTree walks root and returns the sorted file tree. A file root yields a
// single file node.
func BuildTree(root string, opts Options) (*tree.Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, NewError(root, err)
	}
	name := filepath.Base(filepath.Clean(root))

	if !info.IsDir() {
		return tree.NewFile(name, root, extension(name), info.Size(), CountLines(root)), nil
	}

	rootNode := tree.NewDirectory(name, root)
	dirs := map[string]*tree.Node{"": rootNode}

	err = Walk(root, opts, func(e Entry) error {
		parent := dirs[parentRel(e.Rel)]
		if parent == nil {
			return nil
		}
		base := path.Base(e.Rel)
		if e.IsFile {
			parent.AddChild(tree.NewFile(base, e.Path, extension(base), e.Size, CountLines(e.Path)))
			return nil
		}
		dir := tree.NewDirectory(base, e.Path)
		dirs[e.Rel] = dir
		parent.AddChild(dir)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rootNode.SortChildren()
	return rootNode, nil
}

// CountLines counts lines by streaming the file. A final line without a
// trailing newline counts. Returns -1 when the file cannot be read.
func CountLines(file string) int {
	f, err := os.Open(file)
	if err != nil {
		return -1
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 32*1024)
	buf := make([]byte, 32*1024)
	count := 0
	var last byte
	seen := false
	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
			seen = true
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return -1
		}
	}
	if seen && last != '\n' {
		count++
	}
	return count
}

func parentRel(rel string) string {
	i := strings.LastIndexByte(rel, '/')
	if i < 0 {
		return ""
	}
	return rel[:i]
}

func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}
