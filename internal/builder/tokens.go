package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/moradology/pith/internal/walker"
)

// TokenReport is the token count of a tree of files.
type TokenReport struct {
	Total int
	// Files maps root-relative slash paths to token counts.
	Files map[string]int
}

// Tokens counts tokens in every accepted text file under root. A file root
// is counted as-is, without classification.
func (b *Builder) Tokens(ctx context.Context, root string) (*TokenReport, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, walker.NewError(root, err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", root, err)
		}
		n := b.counter.Count(string(data))
		return &TokenReport{Total: n, Files: map[string]int{filepath.ToSlash(root): n}}, nil
	}

	entries, err := walker.Collect(root, b.opts.Walk)
	if err != nil {
		return nil, err
	}

	var files []walker.Entry
	for _, e := range entries {
		if e.IsFile {
			files = append(files, e)
		}
	}

	counts := make([]int, len(files))
	accepted := make([]bool, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i, e := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, ok := b.readText(e)
			if !ok {
				return nil
			}
			counts[i] = b.counter.Count(content)
			accepted[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &TokenReport{Files: make(map[string]int)}
	for i, e := range files {
		if !accepted[i] {
			continue
		}
		report.Files[e.Rel] = counts[i]
		report.Total += counts[i]
	}
	return report, nil
}
