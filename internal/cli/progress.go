package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/moradology/pith/internal/codemap"
	"github.com/moradology/pith/internal/tree"
)

// ProgressReporter draws extraction progress on a terminal stream. stdout
// carries the document, so it is normally given stderr.
type ProgressReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

var _ codemap.ProgressReporter = (*ProgressReporter)(nil)

// NewProgressReporter creates a reporter writing to out.
func NewProgressReporter(out io.Writer) *ProgressReporter {
	return &ProgressReporter{out: out}
}

func (p *ProgressReporter) OnExtractionStart(totalFiles int) {
	p.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Extracting codemaps"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.out)
		}),
	)
}

func (p *ProgressReporter) OnFileExtracted(path string) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *ProgressReporter) OnExtractionComplete(stats codemap.ExtractionStats) {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
	fmt.Fprintf(p.out, "✓ Extracted %s codemaps from %s files in %.1fs",
		tree.FormatNumber(stats.Extracted), tree.FormatNumber(stats.Files), stats.Duration.Seconds())
	if stats.ParseErrors > 0 {
		fmt.Fprintf(p.out, " (%d with parse errors)", stats.ParseErrors)
	}
	fmt.Fprintln(p.out)
}
