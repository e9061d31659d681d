package builder

import (
	"context"

	"github.com/moradology/pith/internal/output"
)

// CodemapDocument extracts the codemaps of root and renders them without a
// file tree.
func (b *Builder) CodemapDocument(ctx context.Context, root string, format output.Format) (*output.Result, error) {
	codemaps, err := b.Codemaps(ctx, root)
	if err != nil {
		return nil, err
	}

	opts := output.CodemapOptions()
	opts.Format = format
	opts.PublicOnly = !b.opts.Extract.IncludePrivate
	return output.Render(output.Input{Codemaps: codemaps}, opts, b.counter)
}

// ContextDocument renders the tree, codemaps and selected files of root.
// The selected section is emitted only when something was selected.
func (b *Builder) ContextDocument(ctx context.Context, root string, format output.Format) (*output.Result, error) {
	res, err := b.Context(ctx, root)
	if err != nil {
		return nil, err
	}

	opts := output.ContextOptions()
	opts.Format = format
	opts.PublicOnly = !b.opts.Extract.IncludePrivate
	opts.IncludeSelected = len(res.Selected) > 0
	return output.Render(output.Input{
		Tree:     res.Tree,
		Codemaps: res.Codemaps,
		Selected: res.Selected,
	}, opts, b.counter)
}
