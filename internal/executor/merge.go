package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/harrison/pdfops/internal/models"
	"github.com/harrison/pdfops/internal/output"
	"github.com/harrison/pdfops/internal/pagespec"
	"github.com/harrison/pdfops/internal/pdfdoc"
)

// MergeRequest describes one merge.
type MergeRequest struct {
	Inputs []string      // Input files, in output order
	Pages  pagespec.Spec // Applied to every input; the zero Spec selects all pages
	Output output.Plan
}

// Merger concatenates selected pages of many inputs into one document.
type Merger struct {
	Doc    pdfdoc.Capability
	Logger Logger // optional
}

// NewMerger creates a Merger. The logger may be nil.
func NewMerger(doc pdfdoc.Capability, logger Logger) *Merger {
	if doc == nil {
		panic("pdf capability cannot be nil")
	}
	return &Merger{Doc: doc, Logger: logger}
}

// Merge processes inputs in order. An input that cannot be opened, or whose
// page count does not fit the page spec, is skipped with a warning and the
// merge continues. Cancellation is checked before each input and before the
// output is written; a cancelled merge writes nothing.
//
// The returned result is non-nil whenever inputs were processed, including
// on error, so callers can report what was skipped.
func (m *Merger) Merge(ctx context.Context, req MergeRequest, sink models.ProgressSink) (*models.MergeResult, error) {
	if sink == nil {
		sink = models.NullProgress{}
	}
	defer sink.Finish()

	start := time.Now()
	result := &models.MergeResult{
		Merged:  make([]string, 0, len(req.Inputs)),
		Skipped: make([]models.SkippedInput, 0),
	}

	sink.SetLength(len(req.Inputs))
	acc := m.Doc.Empty()

	for i, in := range req.Inputs {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("merge cancelled after %d of %d inputs: %w", i, len(req.Inputs), err)
		}

		name := filepath.Base(in)
		sink.SetMessage(name)

		if err := m.appendInput(acc, in, req.Pages); err != nil {
			result.Skipped = append(result.Skipped, models.SkippedInput{Path: in, Reason: err})
			GracefulWarn(m.Logger, "Skipping %s: %v", in, err)
		} else {
			result.Merged = append(result.Merged, in)
		}

		sink.Advance(name)
	}

	result.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("merge cancelled before writing: %w", err)
	}
	if acc.PageCount() == 0 {
		return result, fmt.Errorf("merge of %d input(s): %w", len(req.Inputs), ErrNoPagesProduced)
	}

	path, err := req.Output.Resolve()
	if err != nil {
		return result, &OutputError{Path: req.Output.Path, Err: err}
	}
	if err := m.Doc.Save(acc, path); err != nil {
		return result, &OutputError{Path: path, Err: err}
	}

	result.Output = path
	result.Pages = acc.PageCount()
	result.Duration = time.Since(start)
	GracefulInfo(m.Logger, "Wrote %s (%d pages from %d input(s))", path, result.Pages, len(result.Merged))
	return result, nil
}

func (m *Merger) appendInput(acc pdfdoc.Document, path string, spec pagespec.Spec) error {
	doc, err := m.Doc.Open(path)
	if err != nil {
		return NewInputError(path, "open failed", err)
	}

	pages, err := spec.Resolve(doc.PageCount())
	if err != nil {
		return NewInputError(path, "page selection does not fit", err)
	}
	if len(pages) == 0 {
		return NewInputError(path, "nothing to merge", ErrEmptySelection)
	}

	part, err := m.Doc.Extract(doc, pages)
	if err != nil {
		return NewInputError(path, "page extraction failed", err)
	}
	if err := m.Doc.Append(acc, part); err != nil {
		return NewInputError(path, "append failed", err)
	}
	return nil
}
