package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/harrison/pdfops/internal/filelock"
)

const pdfMIME = "application/pdf"

var disableConfigDir sync.Once

// document holds serialized PDF parts. Appending only records parts; they
// are merged into one file when the document is extracted from or saved.
type document struct {
	parts [][]byte
	pages int
}

func (d *document) PageCount() int { return d.pages }

// PDFCPU implements Capability on top of pdfcpu.
type PDFCPU struct {
	conf *model.Configuration
}

// NewPDFCPU returns a capability with relaxed validation, which accepts the
// minor spec violations common in scanner and office output.
func NewPDFCPU() *PDFCPU {
	// pdfcpu otherwise creates a config directory under the user's home
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPU{conf: conf}
}

// Open sniffs the file content, then parses it. Decoder panics on malformed
// input are converted to ErrUnreadable.
func (p *PDFCPU) Open(path string) (doc Document, err error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !mt.Is(pdfMIME) {
		return nil, fmt.Errorf("open %s: %w (detected %s)", path, ErrNotPDF, mt.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("open %s: %w: decoder panic: %v", path, ErrUnreadable, r)
		}
	}()

	n, err := api.PageCount(bytes.NewReader(data), p.config())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, ErrUnreadable, err)
	}
	return &document{parts: [][]byte{data}, pages: n}, nil
}

// Extract collects pages in order into a new document.
func (p *PDFCPU) Extract(doc Document, pages []int) (out Document, err error) {
	d, err := p.own(doc)
	if err != nil {
		return nil, err
	}
	for _, pg := range pages {
		if pg < 1 || pg > d.pages {
			return nil, fmt.Errorf("extract: page %d out of range 1-%d", pg, d.pages)
		}
	}
	if len(pages) == 0 {
		return p.Empty(), nil
	}

	data, err := p.flatten(d)
	if err != nil {
		return nil, err
	}
	if isIdentity(pages, d.pages) {
		return &document{parts: [][]byte{data}, pages: d.pages}, nil
	}

	selection := make([]string, len(pages))
	for i, pg := range pages {
		selection[i] = strconv.Itoa(pg)
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("extract: %w: %v", ErrUnreadable, r)
		}
	}()

	var buf bytes.Buffer
	if err := api.Collect(bytes.NewReader(data), &buf, selection, p.config()); err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}
	return &document{parts: [][]byte{buf.Bytes()}, pages: len(pages)}, nil
}

// Empty returns a document with no pages.
func (p *PDFCPU) Empty() Document {
	return &document{}
}

// Append records src's content after dst's.
func (p *PDFCPU) Append(dst, src Document) error {
	d, err := p.own(dst)
	if err != nil {
		return err
	}
	s, err := p.own(src)
	if err != nil {
		return err
	}
	d.parts = append(d.parts, s.parts...)
	d.pages += s.pages
	return nil
}

// Save merges all parts and writes the result atomically.
func (p *PDFCPU) Save(doc Document, path string) error {
	d, err := p.own(doc)
	if err != nil {
		return err
	}
	if d.pages == 0 {
		return fmt.Errorf("save %s: %w", path, ErrEmptyDocument)
	}

	return filelock.WriteAtomic(path, func(w io.Writer) error {
		if len(d.parts) == 1 {
			_, err := w.Write(d.parts[0])
			return err
		}
		return p.merge(d.parts, w)
	})
}

func (p *PDFCPU) own(doc Document) (*document, error) {
	d, ok := doc.(*document)
	if !ok || d == nil {
		return nil, ErrForeignDocument
	}
	return d, nil
}

// flatten collapses a multi-part document into a single serialized PDF and
// caches the result on d.
func (p *PDFCPU) flatten(d *document) ([]byte, error) {
	if len(d.parts) == 1 {
		return d.parts[0], nil
	}
	var buf bytes.Buffer
	if err := p.merge(d.parts, &buf); err != nil {
		return nil, err
	}
	d.parts = [][]byte{buf.Bytes()}
	return d.parts[0], nil
}

func (p *PDFCPU) merge(parts [][]byte, w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("merge: %w: %v", ErrUnreadable, r)
		}
	}()

	readers := make([]io.ReadSeeker, len(parts))
	for i, part := range parts {
		readers[i] = bytes.NewReader(part)
	}
	if err := api.MergeRaw(readers, w, false, p.config()); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	return nil
}

// config returns a fresh copy; pdfcpu records the running command on it.
func (p *PDFCPU) config() *model.Configuration {
	c := *p.conf
	return &c
}

func isIdentity(pages []int, total int) bool {
	if len(pages) != total {
		return false
	}
	for i, pg := range pages {
		if pg != i+1 {
			return false
		}
	}
	return true
}
