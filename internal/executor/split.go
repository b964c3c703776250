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

// SplitMode selects how a document is cut into outputs.
type SplitMode int

const (
	// SplitEachPage writes one output per page. It is the zero value.
	SplitEachPage SplitMode = iota
	// SplitRanges writes one output per range of a page spec.
	SplitRanges
	// SplitChunked writes consecutive runs of ChunkSize pages.
	SplitChunked
)

// String returns the mode name.
func (m SplitMode) String() string {
	switch m {
	case SplitEachPage:
		return "each"
	case SplitRanges:
		return "ranges"
	case SplitChunked:
		return "chunked"
	default:
		return "unknown"
	}
}

// SplitRequest describes one split.
type SplitRequest struct {
	Input     string
	Mode      SplitMode
	Ranges    pagespec.Spec // SplitRanges only; the zero Spec selects the whole document
	ChunkSize int           // SplitChunked only
	Template  string        // output name template, DefaultTemplate when empty
	OutDir    string        // defaults to the input's directory
	Policy    output.Policy
}

// Splitter writes page ranges of one document to separate files.
type Splitter struct {
	Doc    pdfdoc.Capability
	Logger Logger // optional
}

// NewSplitter creates a Splitter. The logger may be nil.
func NewSplitter(doc pdfdoc.Capability, logger Logger) *Splitter {
	if doc == nil {
		panic("pdf capability cannot be nil")
	}
	return &Splitter{Doc: doc, Logger: logger}
}

// Estimate returns how many files Split would write, without writing any.
func (s *Splitter) Estimate(req SplitRequest) (int, error) {
	doc, err := s.Doc.Open(req.Input)
	if err != nil {
		return 0, fmt.Errorf("split %s: %w", req.Input, err)
	}
	bounds, err := planBounds(req, doc.PageCount())
	if err != nil {
		return 0, fmt.Errorf("split %s: %w", req.Input, err)
	}
	return len(bounds), nil
}

// Split writes one output per planned range, in order. Open failures and
// ranges that do not fit the document are fatal before anything is written.
// A write failure stops the split; files already written stay on disk and
// are listed in the returned result. Cancellation is checked before each
// output.
func (s *Splitter) Split(ctx context.Context, req SplitRequest, sink models.ProgressSink) (*models.SplitResult, error) {
	if sink == nil {
		sink = models.NullProgress{}
	}
	defer sink.Finish()

	start := time.Now()

	doc, err := s.Doc.Open(req.Input)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", req.Input, err)
	}
	total := doc.PageCount()

	bounds, err := planBounds(req, total)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", req.Input, err)
	}
	if len(bounds) == 0 {
		return nil, fmt.Errorf("split %s: %w", req.Input, ErrNoPagesProduced)
	}

	template := req.Template
	if template == "" {
		template = output.DefaultTemplate
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = filepath.Dir(req.Input)
	}
	base := output.BaseName(req.Input)
	width := output.PadWidth(total)

	result := &models.SplitResult{
		Input:      req.Input,
		TotalPages: total,
		Outputs:    make([]models.SplitOutput, 0, len(bounds)),
	}
	sink.SetLength(len(bounds))

	for i, b := range bounds {
		index := i + 1
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("split cancelled after %d of %d outputs: %w", i, len(bounds), err)
		}

		name := output.Expand(template, output.Fields{
			Base:  base,
			Start: b.Start,
			End:   b.End,
			Index: index,
			Width: width,
		})
		sink.SetMessage(name)

		path, err := s.writeRange(doc, b, output.ResolveUnder(outDir, name), req.Policy)
		if err != nil {
			result.Duration = time.Since(start)
			return result, &OutputError{Path: path, Index: index, Err: err}
		}

		result.Outputs = append(result.Outputs, models.SplitOutput{
			Path:  path,
			Index: index,
			Start: b.Start,
			End:   b.End,
		})
		sink.Advance(name)
	}

	result.Duration = time.Since(start)
	GracefulInfo(s.Logger, "Split %s into %d file(s)", req.Input, len(result.Outputs))
	return result, nil
}

func (s *Splitter) writeRange(doc pdfdoc.Document, b pagespec.Bounds, candidate string, policy output.Policy) (string, error) {
	pages := make([]int, 0, b.Len())
	for p := b.Start; p <= b.End; p++ {
		pages = append(pages, p)
	}

	part, err := s.Doc.Extract(doc, pages)
	if err != nil {
		return candidate, err
	}
	path, err := output.Resolve(candidate, policy)
	if err != nil {
		return candidate, err
	}
	if err := s.Doc.Save(part, path); err != nil {
		return path, err
	}
	return path, nil
}

// planBounds turns a request into concrete page intervals for a document
// with total pages.
func planBounds(req SplitRequest, total int) ([]pagespec.Bounds, error) {
	var spec pagespec.Spec
	switch req.Mode {
	case SplitEachPage:
		spec = pagespec.EachPage(total)
	case SplitRanges:
		spec = req.Ranges
	case SplitChunked:
		if req.ChunkSize < 1 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, req.ChunkSize)
		}
		spec = pagespec.Chunks(total, req.ChunkSize)
	default:
		return nil, fmt.Errorf("unknown split mode %d", req.Mode)
	}
	return spec.Bounds(total)
}
