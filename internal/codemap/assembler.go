package codemap

import (
	"context"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moradology/pith/internal/filter"
)

// Source is one candidate file for extraction.
type Source struct {
	// Path is used to open the file and is recorded on the Codemap.
	Path string
	// Rel is the root-relative slash path the classifier sees.
	Rel      string
	Language filter.Language
}

// AssemblerConfig configures an Assembler. Zero values select defaults.
type AssemblerConfig struct {
	Options       Options
	Workers       int   // default runtime.NumCPU()
	MmapThreshold int64 // default DefaultMmapThreshold
	Progress      ProgressReporter
	Verbose       bool // log skipped files
}

// Assembler extracts codemaps for a batch of files in parallel. Each worker
// owns one ParserPool for its lifetime.
type Assembler struct {
	opts          Options
	workers       int
	mmapThreshold int64
	progress      ProgressReporter
	verbose       bool
}

// NewAssembler applies defaults to cfg.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	a := &Assembler{
		opts:          cfg.Options,
		workers:       cfg.Workers,
		mmapThreshold: cfg.MmapThreshold,
		progress:      cfg.Progress,
		verbose:       cfg.Verbose,
	}
	if a.workers <= 0 {
		a.workers = runtime.NumCPU()
	}
	if a.mmapThreshold <= 0 {
		a.mmapThreshold = DefaultMmapThreshold
	}
	if a.progress == nil {
		a.progress = NoOpProgressReporter{}
	}
	return a
}

// Build reads, classifies and extracts every source. Files that are rejected
// or unreadable are left out; syntax errors are kept on their Codemap. The
// result preserves input order. Only context cancellation is returned as an
// error.
func (a *Assembler) Build(ctx context.Context, sources []Source) ([]*Codemap, error) {
	start := time.Now()
	a.progress.OnExtractionStart(len(sources))

	results := make([]*Codemap, len(sources))
	var next atomic.Int64

	workers := min(a.workers, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			pool := NewParserPool()
			defer pool.Close()
			for {
				i := int(next.Add(1) - 1)
				if i >= len(sources) {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = a.extractOne(pool, sources[i])
				a.progress.OnFileExtracted(sources[i].Path)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := ExtractionStats{Files: len(sources), Duration: time.Since(start)}
	codemaps := make([]*Codemap, 0, len(results))
	for _, cm := range results {
		if cm == nil {
			stats.Skipped++
			continue
		}
		if cm.ParseError != "" {
			stats.ParseErrors++
		}
		codemaps = append(codemaps, cm)
	}
	stats.Extracted = len(codemaps)
	a.progress.OnExtractionComplete(stats)
	return codemaps, nil
}

func (a *Assembler) extractOne(pool *ParserPool, src Source) *Codemap {
	content, err := ReadSource(src.Path, src.Rel, a.mmapThreshold)
	if err != nil {
		if a.verbose {
			log.Printf("Warning: skipping %s: %v", src.Path, err)
		}
		return nil
	}
	defer content.Close()
	return Extract(pool, src.Path, src.Language, content.Bytes(), a.opts)
}
