package models

import "time"

// Job kinds
const (
	KindMerge = "merge"
	KindSplit = "split"
)

// SkippedInput records an input that a merge left out and why.
type SkippedInput struct {
	Path   string
	Reason error
}

// MergeResult is the outcome of a merge.
type MergeResult struct {
	Output   string         // Final output path after collision handling
	Pages    int            // Pages in the written document
	Merged   []string       // Inputs that contributed pages, in order
	Skipped  []SkippedInput // Inputs that were skipped, in order
	Duration time.Duration
}

// SplitOutput is one file written by a split.
type SplitOutput struct {
	Path  string
	Index int // 1-based position of the range
	Start int
	End   int
}

// Pages returns the number of pages in the output.
func (o SplitOutput) Pages() int {
	return o.End - o.Start + 1
}

// SplitResult is the outcome of a split. On a write failure it still lists
// the outputs written before the failure.
type SplitResult struct {
	Input      string
	TotalPages int
	Outputs    []SplitOutput
	Duration   time.Duration
}

// PagesWritten sums the pages across all outputs.
func (r *SplitResult) PagesWritten() int {
	n := 0
	for _, o := range r.Outputs {
		n += o.Pages()
	}
	return n
}
