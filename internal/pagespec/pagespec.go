// Package pagespec parses page-selection strings such as "1-3,5,10-" and
// resolves them against a document's page count.
//
// Parsing and resolution are separate steps: a Spec is parsed once, before any
// document is opened, and resolved later against each document's actual page
// count. Open-ended ranges ("10-") can only be expanded at that point.
package pagespec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse errors. Every error returned by Parse wraps exactly one of these.
var (
	ErrInvalidToken    = errors.New("invalid page token")
	ErrNonPositivePage = errors.New("page numbers start at 1")
	ErrInvertedRange   = errors.New("range end is before range start")
	ErrOutOfBounds     = errors.New("page range out of bounds")
)

// ParseError reports the token that failed to parse.
type ParseError struct {
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// OutOfBoundsError reports a range that does not fit a document.
type OutOfBoundsError struct {
	Range PageRange
	Total int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%v: %s exceeds %d page(s)", ErrOutOfBounds, e.Range, e.Total)
}

func (e *OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// PageRange is a 1-based inclusive range. When Open is set the range runs
// through the last page of whatever document it is resolved against and End
// is ignored.
type PageRange struct {
	Start int
	End   int
	Open  bool
}

// String renders the range in spec syntax.
func (r PageRange) String() string {
	switch {
	case r.Open:
		return fmt.Sprintf("%d-", r.Start)
	case r.Start == r.End:
		return strconv.Itoa(r.Start)
	default:
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	}
}

// Bounds is a concrete inclusive page interval inside one document.
type Bounds struct {
	Start int
	End   int
}

// Len returns the number of pages in the interval.
func (b Bounds) Len() int {
	return b.End - b.Start + 1
}

// Spec is an ordered, immutable list of page ranges.
type Spec struct {
	ranges []PageRange
}

// All returns the spec that selects every page ("1-").
func All() Spec {
	return Spec{ranges: []PageRange{{Start: 1, Open: true}}}
}

// FromRanges builds a spec from already validated ranges.
func FromRanges(ranges ...PageRange) (Spec, error) {
	if len(ranges) == 0 {
		return All(), nil
	}
	out := make([]PageRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Start < 1 || (!r.Open && r.End < 1) {
			return Spec{}, &ParseError{Token: r.String(), Err: ErrNonPositivePage}
		}
		if !r.Open && r.End < r.Start {
			return Spec{}, &ParseError{Token: r.String(), Err: ErrInvertedRange}
		}
		out = append(out, r)
	}
	return Spec{ranges: out}, nil
}

// EachPage returns one singleton range per page of a document with total pages.
func EachPage(total int) Spec {
	ranges := make([]PageRange, 0, total)
	for p := 1; p <= total; p++ {
		ranges = append(ranges, PageRange{Start: p, End: p})
	}
	return Spec{ranges: ranges}
}

// Chunks splits total pages into consecutive ranges of size pages; the last
// range may be shorter. A size below 1 is treated as 1.
func Chunks(total, size int) Spec {
	if size < 1 {
		size = 1
	}
	ranges := make([]PageRange, 0, (total+size-1)/size)
	for start := 1; start <= total; start += size {
		end := start + size - 1
		if end > total {
			end = total
		}
		ranges = append(ranges, PageRange{Start: start, End: end})
	}
	return Spec{ranges: ranges}
}

// Parse parses a comma-separated page spec. Tokens are N, N-M, N- or -M.
// Surrounding whitespace is ignored and an empty string selects every page.
func Parse(s string) (Spec, error) {
	if strings.TrimSpace(s) == "" {
		return All(), nil
	}

	var ranges []PageRange
	for _, raw := range strings.Split(s, ",") {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			continue
		}
		r, err := parseToken(tok)
		if err != nil {
			return Spec{}, err
		}
		ranges = append(ranges, r)
	}

	if len(ranges) == 0 {
		return Spec{}, &ParseError{Token: s, Err: ErrInvalidToken}
	}
	return Spec{ranges: ranges}, nil
}

func parseToken(tok string) (PageRange, error) {
	left, right, isRange := strings.Cut(tok, "-")
	if !isRange {
		n, err := parseNumber(tok, tok)
		if err != nil {
			return PageRange{}, err
		}
		return PageRange{Start: n, End: n}, nil
	}

	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)
	if left == "" && right == "" {
		return PageRange{}, &ParseError{Token: tok, Err: ErrInvalidToken}
	}

	start := 1
	if left != "" {
		n, err := parseNumber(left, tok)
		if err != nil {
			return PageRange{}, err
		}
		start = n
	}
	if right == "" {
		return PageRange{Start: start, Open: true}, nil
	}

	end, err := parseNumber(right, tok)
	if err != nil {
		return PageRange{}, err
	}
	if end < start {
		return PageRange{}, &ParseError{Token: tok, Err: ErrInvertedRange}
	}
	return PageRange{Start: start, End: end}, nil
}

// parseNumber accepts only plain decimal digits so that signs and nested
// dashes are reported as syntax errors rather than range errors.
func parseNumber(s, tok string) (int, error) {
	if s == "" {
		return 0, &ParseError{Token: tok, Err: ErrInvalidToken}
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, &ParseError{Token: tok, Err: ErrInvalidToken}
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParseError{Token: tok, Err: ErrInvalidToken}
	}
	if n < 1 {
		return 0, &ParseError{Token: tok, Err: ErrNonPositivePage}
	}
	return n, nil
}

// Ranges returns a copy of the parsed ranges.
func (s Spec) Ranges() []PageRange {
	out := make([]PageRange, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Len returns the number of ranges in the spec.
func (s Spec) Len() int {
	return len(s.ranges)
}

// IsZero reports whether s is the zero Spec (never parsed).
func (s Spec) IsZero() bool {
	return s.ranges == nil
}

// IsAll reports whether s selects every page.
func (s Spec) IsAll() bool {
	return len(s.ranges) == 1 && s.ranges[0].Open && s.ranges[0].Start == 1
}

// String renders the spec in canonical syntax.
func (s Spec) String() string {
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// Bounds resolves every range to a concrete interval for a document with
// total pages. The zero Spec behaves like All.
func (s Spec) Bounds(total int) ([]Bounds, error) {
	ranges := s.ranges
	if ranges == nil {
		ranges = All().ranges
	}

	out := make([]Bounds, 0, len(ranges))
	for _, r := range ranges {
		end := r.End
		if r.Open {
			// "1-" against an empty document selects nothing.
			if r.Start == 1 && total == 0 {
				continue
			}
			end = total
		}
		if r.Start > total || end > total {
			return nil, &OutOfBoundsError{Range: r, Total: total}
		}
		out = append(out, Bounds{Start: r.Start, End: end})
	}
	return out, nil
}

// Resolve expands the spec into page numbers for a document with total
// pages. Order follows the spec; overlapping ranges repeat pages.
func (s Spec) Resolve(total int) ([]int, error) {
	bounds, err := s.Bounds(total)
	if err != nil {
		return nil, err
	}
	pages := make([]int, 0, total)
	for _, b := range bounds {
		for p := b.Start; p <= b.End; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}
