// Package builder runs one pith pass over a directory: walk, classify, read,
// extract and select. The CLI and the MCP server share it.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/moradology/pith/internal/codemap"
	"github.com/moradology/pith/internal/filter"
	"github.com/moradology/pith/internal/output"
	"github.com/moradology/pith/internal/tree"
	"github.com/moradology/pith/internal/walker"
)

// ErrNoFilesFound is returned when a run produces no codemaps.
var ErrNoFilesFound = errors.New("no files found")

// Options configures a Builder.
type Options struct {
	Walk    walker.Options
	Extract codemap.Options
	// Languages restricts extraction; empty means every supported language.
	Languages []filter.Language
	// Select holds globs matched against root-relative slash paths. Matching
	// files are included in full.
	Select        []string
	Workers       int
	MmapThreshold int64
	Progress      codemap.ProgressReporter
	Verbose       bool
}

// DefaultOptions returns options that respect .gitignore and use every CPU.
func DefaultOptions() Options {
	return Options{
		Walk:          walker.DefaultOptions(),
		Workers:       runtime.NumCPU(),
		MmapThreshold: codemap.DefaultMmapThreshold,
	}
}

// Result is the output of a context run.
type Result struct {
	Tree     *tree.Node
	Codemaps []*codemap.Codemap
	Selected []output.SelectedFile
}

// Builder runs passes over source trees. It is safe for sequential reuse.
type Builder struct {
	opts      Options
	counter   output.TokenCounter
	selectors []glob.Glob
}

// New compiles the selection globs.
func New(opts Options, counter output.TokenCounter) (*Builder, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MmapThreshold <= 0 {
		opts.MmapThreshold = codemap.DefaultMmapThreshold
	}

	b := &Builder{opts: opts, counter: counter}
	for _, pattern := range opts.Select {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid select pattern %q: %w", pattern, err)
		}
		b.selectors = append(b.selectors, g)
	}
	return b, nil
}

// Tree builds the sorted file tree of root.
func (b *Builder) Tree(root string) (*tree.Node, error) {
	return walker.BuildTree(root, b.opts.Walk)
}

// Codemaps extracts codemaps for every qualifying file under root, in walk
// order. It returns ErrNoFilesFound when nothing qualifies.
func (b *Builder) Codemaps(ctx context.Context, root string) ([]*codemap.Codemap, error) {
	entries, err := walker.Collect(root, b.opts.Walk)
	if err != nil {
		return nil, err
	}
	codemaps, err := b.extract(ctx, entries)
	if err != nil {
		return nil, err
	}
	if len(codemaps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFilesFound, root)
	}
	return codemaps, nil
}

// Context builds the tree, the codemaps and the selected files of root.
func (b *Builder) Context(ctx context.Context, root string) (*Result, error) {
	t, err := b.Tree(root)
	if err != nil {
		return nil, err
	}
	entries, err := walker.Collect(root, b.opts.Walk)
	if err != nil {
		return nil, err
	}

	codemaps, err := b.extract(ctx, entries)
	if err != nil {
		return nil, err
	}
	if len(codemaps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFilesFound, root)
	}

	selected, err := b.selectFiles(ctx, entries)
	if err != nil {
		return nil, err
	}
	return &Result{Tree: t, Codemaps: codemaps, Selected: selected}, nil
}

func (b *Builder) extract(ctx context.Context, entries []walker.Entry) ([]*codemap.Codemap, error) {
	var sources []codemap.Source
	for _, e := range entries {
		if !e.IsFile {
			continue
		}
		lang, ok := filter.Detect(e.Path)
		if !ok {
			continue
		}
		if len(b.opts.Languages) > 0 && !filter.Contains(b.opts.Languages, lang) {
			continue
		}
		sources = append(sources, codemap.Source{Path: e.Path, Rel: e.Rel, Language: lang})
	}

	assembler := codemap.NewAssembler(codemap.AssemblerConfig{
		Options:       b.opts.Extract,
		Workers:       b.opts.Workers,
		MmapThreshold: b.opts.MmapThreshold,
		Progress:      b.opts.Progress,
		Verbose:       b.opts.Verbose,
	})
	return assembler.Build(ctx, sources)
}

func (b *Builder) selected(rel string) bool {
	for _, g := range b.selectors {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// selectFiles reads and counts every selected file. Files the classifier
// rejects or that are not UTF-8 are left out.
func (b *Builder) selectFiles(ctx context.Context, entries []walker.Entry) ([]output.SelectedFile, error) {
	if len(b.selectors) == 0 {
		return nil, nil
	}

	var picked []walker.Entry
	for _, e := range entries {
		if e.IsFile && b.selected(e.Rel) {
			picked = append(picked, e)
		}
	}

	files := make([]*output.SelectedFile, len(picked))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i, e := range picked {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, ok := b.readText(e)
			if !ok {
				return nil
			}
			f := output.NewSelectedFile(e.Path, content, b.counter)
			files[i] = &f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []output.SelectedFile
	for _, f := range files {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (b *Builder) readText(e walker.Entry) (string, bool) {
	content, err := codemap.ReadSource(e.Path, e.Rel, b.opts.MmapThreshold)
	if err != nil {
		if b.opts.Verbose {
			log.Printf("Warning: skipping %s: %v", e.Path, err)
		}
		return "", false
	}
	defer content.Close()
	return string(content.Bytes()), true
}
