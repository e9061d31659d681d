package codemap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	mmap "github.com/blevesearch/mmap-go"

	"github.com/moradology/pith/internal/filter"
)

// DefaultMmapThreshold is the file size above which content is memory-mapped.
const DefaultMmapThreshold int64 = 5_000_000

var (
	// ErrRejected means the classifier judged the file not worth extracting.
	ErrRejected = errors.New("rejected by classifier")
	// ErrNotText means the content is not valid UTF-8.
	ErrNotText = errors.New("content is not valid UTF-8")
)

// Content is a file's bytes, possibly backed by a memory mapping. Close must
// be called once the bytes are no longer referenced.
type Content struct {
	data   []byte
	mapped mmap.MMap
}

// Bytes returns the file content.
func (c *Content) Bytes() []byte {
	return c.data
}

// Mapped reports whether the content is memory-mapped.
func (c *Content) Mapped() bool {
	return c.mapped != nil
}

// Close releases the mapping, if any.
func (c *Content) Close() error {
	if c.mapped == nil {
		return nil
	}
	err := c.mapped.Unmap()
	c.mapped = nil
	c.data = nil
	return err
}

// ReadSource reads the first filter.PrefixSize bytes, runs the classifier on
// them with the root-relative path rel, and only then reads the whole file.
// The prefix is reused as the start of the content. Files larger than
// mmapThreshold are memory-mapped, falling back to a heap read when mapping
// fails.
func ReadSource(path, rel string, mmapThreshold int64) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()

	prefix := make([]byte, filter.PrefixSize)
	n, err := io.ReadFull(f, prefix)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	prefix = prefix[:n]

	if r := filter.ShouldProcess(rel, prefix); !r.Accept {
		return nil, fmt.Errorf("%w: %s", ErrRejected, r.Reason)
	}

	if int64(n) < filter.PrefixSize || size <= int64(n) {
		return textContent(prefix, nil)
	}

	if mmapThreshold > 0 && size > mmapThreshold {
		if m, err := mmap.Map(f, mmap.RDONLY, 0); err == nil {
			return textContent(m, m)
		}
	}

	buf := make([]byte, n, size)
	copy(buf, prefix)
	rest, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return textContent(append(buf, rest...), nil)
}

func textContent(data []byte, mapped mmap.MMap) (*Content, error) {
	if !utf8.Valid(data) {
		if mapped != nil {
			_ = mapped.Unmap()
		}
		return nil, ErrNotText
	}
	return &Content{data: data, mapped: mapped}, nil
}
