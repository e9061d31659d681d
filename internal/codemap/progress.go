package codemap

import "time"

// ExtractionStats summarizes one assembler run.
type ExtractionStats struct {
	Files       int
	Extracted   int
	Skipped     int
	ParseErrors int
	Duration    time.Duration
}

// ProgressReporter receives extraction progress. OnFileExtracted is called
// from worker goroutines and must be safe for concurrent use.
type ProgressReporter interface {
	// OnExtractionStart is called once with the number of candidate files.
	OnExtractionStart(totalFiles int)

	// OnFileExtracted is called after each file, whether or not it produced a codemap.
	OnFileExtracted(path string)

	// OnExtractionComplete is called after all workers finish.
	OnExtractionComplete(stats ExtractionStats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnExtractionStart(totalFiles int)           {}
func (NoOpProgressReporter) OnFileExtracted(path string)                {}
func (NoOpProgressReporter) OnExtractionComplete(stats ExtractionStats) {}
