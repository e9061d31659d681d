package codemap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moradology/pith/internal/filter"
)

// Test Plan for the assembler, merge pass, parser pool and reader:
// - mergeMethods appends to the matching struct and keeps misses top level
// - a malformed file gets ParseError while a sibling file is fully extracted
// - results come back in input order across many workers
// - rejected, non-UTF-8 and missing files are skipped, not failed
// - cancellation surfaces as an error
// - progress is reported for every file
// - the parser pool builds one parser per grammar and rejects unknown languages
// - the reader maps large files and reuses the prefix for small ones

func TestMergeMethods(t *testing.T) {
	t.Parallel()

	st := &Struct{Name: "Server"}
	other := &Function{Name: "Standalone"}
	decls := []Declaration{st, other}

	merged := mergeMethods(decls, []methodBlock{
		{typeName: "Server", methods: []Declaration{&Function{Name: "Start"}, &Function{Name: "Stop"}}},
		{typeName: "Missing", methods: []Declaration{&Function{Name: "Orphan"}}},
	})

	require.Len(t, merged, 3)
	assert.Same(t, st, merged[0])
	require.Len(t, st.Methods, 2)
	assert.Equal(t, "Start", st.Methods[0].DeclName())
	assert.Equal(t, "Stop", st.Methods[1].DeclName())
	assert.Equal(t, "Orphan", merged[2].DeclName())

	assert.Equal(t, decls, mergeMethods(decls, nil))
}

func TestCodemap_DeclarationCount(t *testing.T) {
	t.Parallel()

	cm := &Codemap{Declarations: []Declaration{
		&Struct{Name: "S", Methods: []Declaration{&Function{Name: "m"}}},
		&Class{Name: "C", Members: []Declaration{&Function{Name: "a"}, &Function{Name: "b"}}},
		&Const{Name: "K"},
	}}
	assert.Equal(t, 6, cm.DeclarationCount())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAssembler_PartialFailureIsolation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.rs", "pub fn broken( {\n")
	good := writeFile(t, dir, "good.rs", "pub fn fine() {}\npub struct Ok;\n")

	a := NewAssembler(AssemblerConfig{Workers: 2})
	codemaps, err := a.Build(context.Background(), []Source{
		{Path: bad, Rel: "bad.rs", Language: filter.Rust},
		{Path: good, Rel: "good.rs", Language: filter.Rust},
	})
	require.NoError(t, err)
	require.Len(t, codemaps, 2)

	assert.Equal(t, bad, codemaps[0].Path)
	assert.NotEmpty(t, codemaps[0].ParseError)

	assert.Equal(t, good, codemaps[1].Path)
	assert.Empty(t, codemaps[1].ParseError)
	assert.Len(t, codemaps[1].Declarations, 2)
}

func TestAssembler_InputOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var sources []Source
	for i := range 40 {
		name := filepath.Join(dir, "f"+strings.Repeat("x", i)+".go")
		require.NoError(t, os.WriteFile(name, []byte("package p\n\nfunc F() {}\n"), 0o644))
		sources = append(sources, Source{Path: name, Rel: filepath.Base(name), Language: filter.Go})
	}

	codemaps, err := NewAssembler(AssemblerConfig{Workers: 8}).Build(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, codemaps, len(sources))
	for i, cm := range codemaps {
		assert.Equal(t, sources[i].Path, cm.Path)
	}
}

func TestAssembler_SkipsUnreadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	generated := writeFile(t, dir, "gen.go", "// Code generated by tool. DO NOT EDIT.\npackage p\n")
	binary := writeFile(t, dir, "bin.py", "x = 1\x00\n")
	notText := writeFile(t, dir, "latin.py", "x = '\xff\xfe'\n")
	good := writeFile(t, dir, "ok.py", "def f():\n    pass\n")

	progress := &countingProgress{}
	a := NewAssembler(AssemblerConfig{Progress: progress})
	codemaps, err := a.Build(context.Background(), []Source{
		{Path: generated, Rel: "gen.go", Language: filter.Go},
		{Path: binary, Rel: "bin.py", Language: filter.Python},
		{Path: notText, Rel: "latin.py", Language: filter.Python},
		{Path: filepath.Join(dir, "missing.py"), Rel: "missing.py", Language: filter.Python},
		{Path: good, Rel: "ok.py", Language: filter.Python},
	})
	require.NoError(t, err)
	require.Len(t, codemaps, 1)
	assert.Equal(t, good, codemaps[0].Path)

	assert.Equal(t, 5, progress.started)
	assert.Equal(t, 5, progress.count())
	assert.Equal(t, 4, progress.stats.Skipped)
	assert.Equal(t, 1, progress.stats.Extracted)
}

func TestAssembler_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.rs", "fn a() {}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAssembler(AssemblerConfig{}).Build(ctx, []Source{{Path: path, Rel: "a.rs", Language: filter.Rust}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssembler_Empty(t *testing.T) {
	t.Parallel()

	codemaps, err := NewAssembler(AssemblerConfig{}).Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, codemaps)
}

type countingProgress struct {
	mu      sync.Mutex
	started int
	files   int
	stats   ExtractionStats
}

func (p *countingProgress) OnExtractionStart(total int) { p.started = total }

func (p *countingProgress) OnFileExtracted(string) {
	p.mu.Lock()
	p.files++
	p.mu.Unlock()
}

func (p *countingProgress) OnExtractionComplete(stats ExtractionStats) { p.stats = stats }

func (p *countingProgress) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.files
}

func TestParserPool(t *testing.T) {
	t.Parallel()

	pool := NewParserPool()
	defer pool.Close()

	first, err := pool.Get(filter.TypeScript)
	require.NoError(t, err)
	again, err := pool.Get(filter.JavaScript)
	require.NoError(t, err)
	assert.Same(t, first, again, "JavaScript reuses the TypeScript parser")

	_, err = pool.Get(filter.TSX)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())

	_, err = pool.Get(filter.Unknown)
	assert.Error(t, err)

	cm := Extract(pool, "x", filter.Unknown, []byte("x"), Options{})
	assert.Contains(t, cm.ParseError, "unsupported language")
	assert.NotNil(t, cm)
}

func TestReadSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	small := writeFile(t, dir, "small.rs", "fn a() {}\n")
	c, err := ReadSource(small, "small.rs", DefaultMmapThreshold)
	require.NoError(t, err)
	assert.Equal(t, "fn a() {}\n", string(c.Bytes()))
	assert.False(t, c.Mapped())
	require.NoError(t, c.Close())

	body := strings.Repeat("fn a() {}\n", 500)
	large := writeFile(t, dir, "large.rs", body)

	heap, err := ReadSource(large, "large.rs", DefaultMmapThreshold)
	require.NoError(t, err)
	assert.Equal(t, body, string(heap.Bytes()))
	assert.False(t, heap.Mapped())
	require.NoError(t, heap.Close())

	mapped, err := ReadSource(large, "large.rs", 1024)
	require.NoError(t, err)
	assert.Equal(t, body, string(mapped.Bytes()))
	assert.True(t, mapped.Mapped())
	require.NoError(t, mapped.Close())

	lock := writeFile(t, dir, "Cargo.lock", "[[package]]\n")
	_, err = ReadSource(lock, "Cargo.lock", DefaultMmapThreshold)
	assert.ErrorIs(t, err, ErrRejected)

	invalid := writeFile(t, dir, "bad.rs", "fn \xff() {}\n")
	_, err = ReadSource(invalid, "bad.rs", DefaultMmapThreshold)
	assert.ErrorIs(t, err, ErrNotText)
}
